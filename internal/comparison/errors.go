package comparison

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("comparison: geçersiz girdi")

// InvalidInputError karşılaştırılacak dönem özetlerinden biri ya da ikisi eksik.
type InvalidInputError struct {
	Missing []string // "left", "right"
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("comparison: %s dönem özeti eksik", strings.Join(e.Missing, ", "))
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
