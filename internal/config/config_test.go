package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_VALUE", "inventory-service")

	assert.Equal(t, "inventory-service", GetEnv("CONFIG_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CONFIG_TEST_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CONFIG_TEST_PORT", "3003")
	t.Setenv("CONFIG_TEST_BAD", "abc")

	assert.Equal(t, 3003, GetEnvInt("CONFIG_TEST_PORT", 8080))
	assert.Equal(t, 8080, GetEnvInt("CONFIG_TEST_BAD", 8080))
	assert.Equal(t, 8080, GetEnvInt("CONFIG_TEST_MISSING", 8080))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("CONFIG_TEST_TIMEOUT", "250ms")
	t.Setenv("CONFIG_TEST_SECONDS", "7")
	t.Setenv("CONFIG_TEST_BAD", "soon")

	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("CONFIG_TEST_TIMEOUT", time.Second))
	assert.Equal(t, 7*time.Second, GetEnvDuration("CONFIG_TEST_SECONDS", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("CONFIG_TEST_BAD", time.Second))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("CONFIG_TEST_ENABLED", "false")

	assert.False(t, GetEnvBool("CONFIG_TEST_ENABLED", true))
	assert.True(t, GetEnvBool("CONFIG_TEST_MISSING", true))
}
