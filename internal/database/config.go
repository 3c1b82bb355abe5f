// Package database opens Postgres connections and applies the shared schema.
package database

import (
	"fmt"
	"net/url"

	"github.com/matheusmosca/ecommerce-services/internal/config"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

func ConfigFromEnv(defaultName string) Config {
	return Config{
		Host:     config.GetEnv("DATABASE_HOST", "localhost"),
		Port:     config.GetEnv("DATABASE_PORT", "5432"),
		User:     config.GetEnv("DATABASE_USER", "root"),
		Password: config.GetEnv("DATABASE_PASSWORD", "pass"),
		Name:     config.GetEnv("DATABASE_NAME", defaultName),
		MaxConns: config.GetEnvInt("DATABASE_MAX_CONNS", 10),
		MinConns: config.GetEnvInt("DATABASE_MIN_CONNS", 2),
	}
}

// URL is the postgres:// form used by pgxpool.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// DSN is the key/value form used by lib/pq.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}
