package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGatewayAccounts_Defaults(t *testing.T) {
	t.Setenv("PAYMENT_COUNTRIES", "")
	t.Setenv("MP_AR_ACCESS_TOKEN", "APP_USR-ar")
	t.Setenv("MP_AR_PUBLIC_KEY", "APP_PUB-ar")
	t.Setenv("MP_CO_ACCESS_TOKEN", "")

	accounts, err := LoadGatewayAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	ar, co := accounts[0], accounts[1]
	assert.Equal(t, "AR", ar.Country)
	assert.Equal(t, "ARS", ar.Currency)
	assert.True(t, ar.CommissionPercent.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, int32(2), ar.Decimals)
	assert.Equal(t, "APP_USR-ar", ar.AccessToken)
	assert.Equal(t, "APP_PUB-ar", ar.PublicKey)

	assert.Equal(t, "CO", co.Country)
	assert.Equal(t, "COP", co.Currency)
	assert.Equal(t, int32(0), co.Decimals)
	assert.Empty(t, co.AccessToken)
}

func TestLoadGatewayAccounts_ExtraCountryAndOverrides(t *testing.T) {
	t.Setenv("PAYMENT_COUNTRIES", "mx")
	t.Setenv("MP_MX_CURRENCY", "mxn")
	t.Setenv("MP_MX_COMMISSION_PERCENT", "12.5")
	t.Setenv("MP_CO_DECIMALS", "2")

	accounts, err := LoadGatewayAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	byCountry := map[string]GatewayAccount{}
	for _, a := range accounts {
		byCountry[a.Country] = a
	}
	assert.Equal(t, "MXN", byCountry["MX"].Currency)
	assert.Equal(t, "12.5", byCountry["MX"].CommissionPercent.String())
	assert.Equal(t, int32(2), byCountry["CO"].Decimals)
}

func TestLoadGatewayAccounts_RejectsBadCommission(t *testing.T) {
	t.Setenv("MP_AR_COMMISSION_PERCENT", "150")
	_, err := LoadGatewayAccounts()
	assert.Error(t, err)

	t.Setenv("MP_AR_COMMISSION_PERCENT", "abc")
	_, err = LoadGatewayAccounts()
	assert.Error(t, err)
}

func TestLoadGatewayAccounts_ExtraCountryWithoutCurrency(t *testing.T) {
	t.Setenv("PAYMENT_COUNTRIES", "CL")
	_, err := LoadGatewayAccounts()
	assert.Error(t, err)
}

func TestLoadRuntimeConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("MP_SANDBOX", "yes")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadRuntimeConfig()
	require.NoError(t, err)
	assert.Equal(t, "petcare.db", cfg.DatabaseURL)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "AR", cfg.DefaultCountry)
	assert.True(t, cfg.GatewaySandbox)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRuntimeConfig_ProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadRuntimeConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("MP_NOTIFICATION_URL", "")
	_, err = LoadRuntimeConfig()
	assert.Error(t, err)

	t.Setenv("MP_NOTIFICATION_URL", "https://api.example/api/v1/payments/webhook")
	cfg, err := LoadRuntimeConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.AppEnv)
}

func TestLoadRuntimeConfig_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("GATEWAY_TIMEOUT", "soon")
	_, err := LoadRuntimeConfig()
	assert.Error(t, err)
}
