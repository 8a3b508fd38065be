package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=restoran port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"

	minJWTSecretLen = 32
)

type Config struct {
	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseDSN      string        `envconfig:"DATABASE_DSN" default:"host=localhost user=postgres password=postgres dbname=restoran port=5432 sslmode=disable"`
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL           time.Duration `envconfig:"JWT_TTL" default:"24h"`
	CORSOrigins      string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`
	RedisURL         string        `envconfig:"REDIS_URL"`
	SnapshotCacheTTL time.Duration `envconfig:"SNAPSHOT_CACHE_TTL" default:"5m"`
	Timezone         string        `envconfig:"APP_TIMEZONE" default:"Europe/Istanbul"`
}

// Load önce varsa .env dosyasını okur, sonra environment değişkenlerini işler.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env okunamadı: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config çözümlenemedi: %w", err)
	}

	if len(cfg.JWTSecret) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET en az %d karakter olmalıdır", minJWTSecretLen)
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("JWT_TTL pozitif olmalıdır")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location raporlama için kullanılan saat dilimi.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE geçersiz (%s): %w", c.Timezone, err)
	}
	return loc, nil
}

// CORSOriginList virgülle ayrılmış origin listesini temizler.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Warnings production için güvensiz varsayılanları listeler.
func (c *Config) Warnings() []string {
	var warns []string
	if c.DatabaseDSN == defaultDatabaseDSN {
		warns = append(warns, "DATABASE_DSN varsayılan değer kullanılıyor, production için kendi Postgres bağlantı bilgisini tanımla")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		warns = append(warns, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için kendi domain'ini tanımla")
	}
	if c.RedisURL == "" {
		warns = append(warns, "REDIS_URL tanımlı değil, dönem özetleri önbelleğe alınmayacak")
	}
	return warns
}
