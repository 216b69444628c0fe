package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vuttr/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, ":3000", cfg.AppPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.Verbose())
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10*time.Minute, cfg.PasswordResetTTL)
}

func TestLoad_PasswordPlaceholderSubstitution(t *testing.T) {
	t.Setenv("DATABASE", "host=db user=vuttr password=<PASSWORD> dbname=vuttr")
	t.Setenv("DATABASE_PASSWORD", "s3cret")

	cfg := config.Load()

	assert.Equal(t, "host=db user=vuttr password=s3cret dbname=vuttr", cfg.DatabaseDSN)
}

func TestLoad_ProductionIsQuiet(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg := config.Load()

	assert.False(t, cfg.Verbose())
}
