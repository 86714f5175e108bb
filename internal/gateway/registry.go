package gateway

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"petcare/internal/config"

	"github.com/shopspring/decimal"
)

// Account is a country's gateway configuration together with its clients.
type Account struct {
	Country           string
	Currency          string
	CommissionPercent decimal.Decimal
	Decimals          int32
	PublicKey         string

	Payments    PaymentClient
	Preferences PreferenceClient
}

// ClientFactory builds the client pair for one access token.
type ClientFactory func(accessToken string) (PaymentClient, PreferenceClient)

func MercadoPagoFactory(baseURL string, timeout time.Duration) ClientFactory {
	return func(accessToken string) (PaymentClient, PreferenceClient) {
		c := NewMercadoPagoClient(baseURL, accessToken, timeout)
		return c, c
	}
}

// Registry holds one Account per configured country. It is immutable after
// NewRegistry returns and safe for concurrent reads.
type Registry struct {
	accounts  map[string]*Account
	countries []string
}

func NewRegistry(accounts []config.GatewayAccount, factory ClientFactory, loggerf func(format string, args ...interface{})) *Registry {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	r := &Registry{accounts: map[string]*Account{}}
	for _, acc := range accounts {
		cc := strings.ToUpper(acc.Country)
		if acc.AccessToken == "" {
			loggerf("level=warn msg=gateway credentials missing, country disabled country=%s", cc)
			continue
		}
		payments, preferences := factory(acc.AccessToken)
		r.accounts[cc] = &Account{
			Country:           cc,
			Currency:          acc.Currency,
			CommissionPercent: acc.CommissionPercent,
			Decimals:          acc.Decimals,
			PublicKey:         acc.PublicKey,
			Payments:          payments,
			Preferences:       preferences,
		}
		r.countries = append(r.countries, cc)
		loggerf("level=info msg=gateway account ready country=%s currency=%s commission_percent=%s", cc, acc.Currency, acc.CommissionPercent)
	}
	sort.Strings(r.countries)
	return r
}

func (r *Registry) ClientFor(country string) (*Account, error) {
	acc, ok := r.accounts[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConfigured, country)
	}
	return acc, nil
}

// Countries returns the configured country codes in sorted order.
func (r *Registry) Countries() []string {
	out := make([]string, len(r.countries))
	copy(out, r.countries)
	return out
}

func (r *Registry) PublicKey(country string) (string, error) {
	acc, err := r.ClientFor(country)
	if err != nil {
		return "", err
	}
	return acc.PublicKey, nil
}
