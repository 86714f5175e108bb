package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/domain"
	"petcare/internal/gateway"
	"petcare/internal/messaging"
	"petcare/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest, idempotencyKey string) (*gateway.Payment, error) {
	args := m.Called(ctx, req, idempotencyKey)
	p, _ := args.Get(0).(*gateway.Payment)
	return p, args.Error(1)
}

func (m *mockGateway) GetPayment(ctx context.Context, id string) (*gateway.Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*gateway.Payment)
	return p, args.Error(1)
}

func (m *mockGateway) CreatePreference(ctx context.Context, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*gateway.Preference)
	return p, args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.Event, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	db           *gorm.DB
	svc          *Service
	ar           *mockGateway
	co           *mockGateway
	events       *recordingPublisher
	bookings     *repository.BookingRepository
	transactions *repository.TransactionRepository
	journal      *repository.WebhookEventRepository
	booking      *domain.Booking
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:           db,
		ar:           &mockGateway{},
		co:           &mockGateway{},
		events:       &recordingPublisher{},
		bookings:     repository.NewBookingRepository(db),
		transactions: repository.NewTransactionRepository(db),
		journal:      repository.NewWebhookEventRepository(db),
	}

	registry := gateway.NewRegistry([]config.GatewayAccount{
		{Country: "AR", Currency: "ARS", CommissionPercent: decimal.NewFromInt(15), Decimals: 2, AccessToken: "ar-token", PublicKey: "APP_USR-ar-public"},
		{Country: "CO", Currency: "COP", CommissionPercent: decimal.NewFromInt(10), Decimals: 0, AccessToken: "co-token"},
	}, func(token string) (gateway.PaymentClient, gateway.PreferenceClient) {
		if token == "co-token" {
			return f.co, f.co
		}
		return f.ar, f.ar
	}, nil)

	if opts.DefaultCountry == "" {
		opts.DefaultCountry = "AR"
	}
	if opts.NotificationURL == "" {
		opts.NotificationURL = "https://api.petcare.test/api/v1/payments/webhook"
	}
	if opts.GatewayTimeout == 0 {
		opts.GatewayTimeout = time.Second
	}
	f.svc = NewService(f.bookings, f.transactions, f.journal, registry, f.events, opts, t.Logf)
	f.booking = f.seedBooking(t, "AR", decimal.NewFromInt(1000))
	return f
}

func (f *fixture) seedBooking(t *testing.T, country string, total decimal.Decimal) *domain.Booking {
	t.Helper()
	users := repository.NewUserRepository(f.db)
	client := &domain.User{Email: "client-" + uuid.NewString() + "@example.com", FirstName: "Ana", LastName: "Paz", Role: domain.RoleClient, Country: country}
	provider := &domain.User{Email: "walker-" + uuid.NewString() + "@example.com", Role: domain.RoleProvider, Country: country}
	require.NoError(t, users.Create(context.Background(), client))
	require.NoError(t, users.Create(context.Background(), provider))

	b := &domain.Booking{
		ClientID:    client.ID,
		ProviderID:  provider.ID,
		ServiceName: "Dog walking",
		TotalPrice:  total,
		Currency:    "ARS",
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *domain.Booking {
	t.Helper()
	b, err := f.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) ledger(t *testing.T, id uuid.UUID) []domain.Transaction {
	t.Helper()
	txs, err := f.transactions.ListByBooking(context.Background(), id)
	require.NoError(t, err)
	return txs
}

func gatewayPayment(id int64, status string, bookingID uuid.UUID) *gateway.Payment {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &gateway.Payment{
		ID:                id,
		Status:            status,
		StatusDetail:      "detail_" + status,
		TransactionAmount: 1000,
		CurrencyID:        "ARS",
		DateCreated:       &created,
		ExternalReference: bookingID.String(),
		PaymentMethodID:   "visa",
		FeeDetails:        []gateway.FeeDetail{{Type: "mercadopago_fee", Amount: 41.5, FeePayer: "collector"}},
	}
}
