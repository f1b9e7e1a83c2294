package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	vars := []string{
		"STOREFRONT_APP_NAME",
		"STOREFRONT_APP_ENV",
		"STOREFRONT_APP_PORT",
		"STOREFRONT_DATABASE_HOST",
		"STOREFRONT_DATABASE_PASSWORD",
		"STOREFRONT_DATABASE_SSLMODE",
		"STOREFRONT_JWT_SECRET",
		"STOREFRONT_CHECKOUT_CURRENCY",
		"STOREFRONT_CHECKOUT_TAX_RATE",
		"STOREFRONT_STRIPE_SECRET_KEY",
		"STOREFRONT_STRIPE_WEBHOOK_SECRET",
	}

	originalEnv := map[string]string{}
	for _, k := range vars {
		originalEnv[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for _, k := range vars {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, "EUR", cfg.Checkout.Currency)
		assert.Equal(t, "0.22", cfg.Checkout.TaxRate)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_NAME", "test-app")
		os.Setenv("STOREFRONT_DATABASE_HOST", "testdb.local")
		os.Setenv("STOREFRONT_CHECKOUT_CURRENCY", "USD")
		os.Setenv("STOREFRONT_CHECKOUT_TAX_RATE", "0.19")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "USD", cfg.Checkout.Currency)
		assert.Equal(t, "0.19", cfg.Checkout.TaxRate)
	})

	t.Run("production requires credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_CHECKOUT_CURRENCY", "EURO")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.currency")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "storefront",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss/word") // escaped
}
