package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

// ParseBody JSON gövdesini çözer ve struct tag'lerine göre doğrular.
func ParseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
	}
	return Struct(dest)
}

// ParseQuery query parametrelerini çözer ve doğrular.
func ParseQuery(c *fiber.Ctx, dest any) error {
	if err := c.QueryParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sorgu parametreleri")
	}
	return Struct(dest)
}

// Struct doğrulama hatasını ilk hatalı alanı belirten 400'e çevirir.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, message(verrs[0]))
	}
	return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s zorunlu", field)
	case "gt":
		return fmt.Sprintf("%s %s'dan büyük olmalı", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s en az %s olmalı", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s en fazla %s olmalı", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s geçerli bir email olmalı", field)
	case "oneof":
		return fmt.Sprintf("Geçersiz %s (%s)", field, strings.ReplaceAll(fe.Param(), " ", "|"))
	case "datetime":
		return fmt.Sprintf("%s formatı geçersiz, 'YYYY-MM-DD' olmalı", field)
	default:
		return fmt.Sprintf("%s geçersiz", field)
	}
}
