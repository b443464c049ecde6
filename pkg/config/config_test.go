package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LeeVariablesSCIyOmie(t *testing.T) {
	t.Setenv("SCI_CODIGO_EMPRESA", "123")
	t.Setenv("SCI_CODIGO_CENTRO_CUSTO", "45")
	t.Setenv("SCI_PORCENTAGEM_ISS", "2.5")
	t.Setenv("SCI_DIAS_PAGAMENTO", "10")
	t.Setenv("OMIE_TIMEOUT", "5s")
	t.Setenv("SMTP_CC", "a@x.com, b@x.com,")
	t.Setenv("RECONCILE_RETRY_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123", cfg.SCI.CompanyCode)
	assert.Equal(t, "45", cfg.SCI.CostCenterCode)
	assert.Equal(t, "2.5", cfg.SCI.ISSPercentage.String())
	assert.Equal(t, 10, cfg.SCI.PaymentDays)
	assert.Equal(t, 1, cfg.SCI.DocumentType)
	assert.Equal(t, 5*time.Second, cfg.Omie.Timeout)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.SMTP.CC)
	assert.Equal(t, 5, cfg.Reconcile.RetryAttempts)
}

func TestLoad_ISSInvalido(t *testing.T) {
	t.Setenv("SCI_PORCENTAGEM_ISS", "dos")
	_, err := Load()
	require.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "comisiones", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/comisiones?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_LimitesDelPool(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("DB_MAX_CONN_IDLE_TIME", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.Equal(t, 1, cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, cfg.DB.MaxConnIdleTime)

	t.Setenv("DB_MAX_CONN_LIFETIME", "siempre")
	_, err = Load()
	require.Error(t, err)
}
