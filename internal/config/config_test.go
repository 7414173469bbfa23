package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/misdis")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverPgx, cfg.DBDriver)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.AuthAccountRoutes)
	assert.False(t, cfg.AuthFederalRoutes)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/misdis")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AUTH_FEDERAL_ROUTES", "true")
	t.Setenv("JWT_LEEWAY", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, DriverPQ, cfg.DBDriver)
	assert.True(t, cfg.AuthFederalRoutes)
	assert.Equal(t, 5*time.Second, cfg.JWTLeeway)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "s3cret")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/misdis")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_DRIVER", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DRIVER")
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/misdis")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("BCRYPT_COST", "2")
		_, err := Load()
		assert.ErrorContains(t, err, "BCRYPT_COST")
	})
}
