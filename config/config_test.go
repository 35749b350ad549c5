// file: config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "@escola.pr.gov.br", cfg.EmailDomain)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "store_driver: dynamodb\ndynamo_table: eleicao\nmetrics_enabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "eleicao", cfg.DynamoTable)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "firestore")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestValidate_EmailDomain(t *testing.T) {
	cfg := &Config{StoreDriver: DriverMemory, EmailDomain: "escola.pr.gov.br", SessionSecret: "s", Port: 1}
	assert.Error(t, cfg.Validate())

	cfg.EmailDomain = "@escola.pr.gov.br"
	assert.NoError(t, cfg.Validate())
}
