package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// GatewayAccount is the static per-country gateway configuration.
type GatewayAccount struct {
	Country           string
	Currency          string
	CommissionPercent decimal.Decimal
	// Decimals is the number of minor-unit digits of Currency (ARS 2, COP 0).
	Decimals    int32
	AccessToken string
	PublicKey   string
}

type accountDefaults struct {
	currency   string
	commission string
	decimals   int32
}

var builtinCountries = map[string]accountDefaults{
	"AR": {currency: "ARS", commission: "15", decimals: 2},
	"CO": {currency: "COP", commission: "15", decimals: 0},
}

// LoadGatewayAccounts reads MP_<CC>_ACCESS_TOKEN, MP_<CC>_PUBLIC_KEY,
// MP_<CC>_COMMISSION_PERCENT, MP_<CC>_CURRENCY and MP_<CC>_DECIMALS for AR, CO
// and any extra country listed in PAYMENT_COUNTRIES. Countries are returned
// even without credentials; the registry decides what to do with them.
func LoadGatewayAccounts() ([]GatewayAccount, error) {
	countries := map[string]struct{}{}
	for cc := range builtinCountries {
		countries[cc] = struct{}{}
	}
	for _, cc := range splitList(os.Getenv("PAYMENT_COUNTRIES")) {
		countries[strings.ToUpper(cc)] = struct{}{}
	}

	codes := make([]string, 0, len(countries))
	for cc := range countries {
		codes = append(codes, cc)
	}
	sort.Strings(codes)

	accounts := make([]GatewayAccount, 0, len(codes))
	for _, cc := range codes {
		acc, err := loadAccount(cc)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func loadAccount(cc string) (GatewayAccount, error) {
	if len(cc) != 2 {
		return GatewayAccount{}, fmt.Errorf("invalid country code %q in PAYMENT_COUNTRIES", cc)
	}
	def := builtinCountries[cc]
	if def.commission == "" {
		def.commission = "15"
		def.decimals = 2
	}
	prefix := "MP_" + cc + "_"

	acc := GatewayAccount{
		Country:     cc,
		Currency:    strings.ToUpper(strings.TrimSpace(getEnv(prefix+"CURRENCY", def.currency))),
		AccessToken: strings.TrimSpace(os.Getenv(prefix + "ACCESS_TOKEN")),
		PublicKey:   strings.TrimSpace(os.Getenv(prefix + "PUBLIC_KEY")),
		Decimals:    def.decimals,
	}
	if acc.Currency == "" {
		return GatewayAccount{}, fmt.Errorf("%sCURRENCY must be set for country %s", prefix, cc)
	}

	rawPercent := strings.TrimSpace(getEnv(prefix+"COMMISSION_PERCENT", def.commission))
	percent, err := decimal.NewFromString(rawPercent)
	if err != nil {
		return GatewayAccount{}, fmt.Errorf("invalid %sCOMMISSION_PERCENT value %q: %w", prefix, rawPercent, err)
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return GatewayAccount{}, fmt.Errorf("%sCOMMISSION_PERCENT must be within 0..100, got %s", prefix, rawPercent)
	}
	acc.CommissionPercent = percent

	if raw := strings.TrimSpace(os.Getenv(prefix + "DECIMALS")); raw != "" {
		d, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || d < 0 || d > 4 {
			return GatewayAccount{}, fmt.Errorf("invalid %sDECIMALS value %q", prefix, raw)
		}
		acc.Decimals = int32(d)
	}
	return acc, nil
}
