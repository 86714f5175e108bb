package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"petcare/internal/domain"
	"petcare/internal/gateway"
	"petcare/internal/messaging"
	"petcare/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const defaultGatewayTimeout = 15 * time.Second

type Options struct {
	DefaultCountry  string
	NotificationURL string
	BackURLs        gateway.BackURLs
	GatewayTimeout  time.Duration
	WebhookSecret   string
	// Sandbox returns the sandbox checkout URL from preferences.
	Sandbox bool
}

type Service struct {
	bookings bookingReader
	ledger   ledger
	journal  webhookJournal
	accounts accountRegistry
	events   eventPublisher
	opts     Options
	loggerf  func(format string, args ...interface{})
	now      clock
}

func NewService(bookings bookingReader, ledger ledger, journal webhookJournal, accounts accountRegistry, events eventPublisher, opts Options, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if events == nil {
		events = messaging.NopPublisher{}
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	opts.DefaultCountry = strings.ToUpper(strings.TrimSpace(opts.DefaultCountry))
	return &Service{
		bookings: bookings,
		ledger:   ledger,
		journal:  journal,
		accounts: accounts,
		events:   events,
		opts:     opts,
		loggerf:  loggerf,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreatePreference(ctx context.Context, req CreatePreferenceRequest) (*CreatePreferenceResponse, error) {
	bookingID, err := parseBookingID(req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetWithParties(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(b); err != nil {
		return nil, err
	}
	country := s.resolveCountry(b)
	acc, err := s.account(country)
	if err != nil {
		return nil, err
	}

	commission, payout, err := SplitCommission(b.TotalPrice, acc.CommissionPercent, acc.Decimals)
	if err != nil {
		return nil, domain.BadRequestError{Msg: "invalid booking amount", Err: err}
	}
	s.loggerf("level=info msg=creating preference booking_id=%s country=%s total=%s commission=%s payout=%s",
		b.ID, country, b.TotalPrice, commission, payout)

	pref := gateway.PreferenceRequest{
		Items: []gateway.PreferenceItem{{
			ID:          b.ID.String(),
			Title:       itemTitle(b),
			Quantity:    1,
			UnitPrice:   b.TotalPrice.InexactFloat64(),
			CurrencyID:  acc.Currency,
			Description: b.ServiceName,
		}},
		Payer:             payerFor(b, ""),
		NotificationURL:   s.opts.NotificationURL,
		ExternalReference: b.ID.String(),
	}
	if urls := s.opts.BackURLs; urls != (gateway.BackURLs{}) {
		pref.BackURLs = &urls
		if urls.Success != "" {
			pref.AutoReturn = gateway.StatusApproved
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	created, err := acc.Preferences.CreatePreference(callCtx, pref)
	if err != nil {
		s.loggerf("level=error msg=preference creation failed booking_id=%s country=%s err=%v", b.ID, country, err)
		return nil, gatewayError("gateway rejected the preference", err)
	}

	initPoint := created.InitPoint
	if s.opts.Sandbox && created.SandboxInitPoint != "" {
		initPoint = created.SandboxInitPoint
	}
	s.loggerf("level=info msg=preference created booking_id=%s preference_id=%s", b.ID, created.ID)
	return &CreatePreferenceResponse{PreferenceID: created.ID, InitPoint: initPoint}, nil
}

func (s *Service) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResponse, error) {
	bookingID, err := parseBookingID(req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetWithParties(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(b); err != nil {
		return nil, err
	}
	country := s.resolveCountry(b)
	acc, err := s.account(country)
	if err != nil {
		return nil, err
	}
	commission, payout, err := SplitCommission(b.TotalPrice, acc.CommissionPercent, acc.Decimals)
	if err != nil {
		return nil, domain.BadRequestError{Msg: "invalid booking amount", Err: err}
	}

	payReq := gateway.PaymentRequest{
		TransactionAmount: b.TotalPrice.InexactFloat64(),
		Token:             req.Token,
		Description:       req.Description,
		Installments:      req.Installments,
		PaymentMethodID:   req.PaymentMethodID,
		Payer:             payerFor(b, req.PayerEmail),
		ExternalReference: b.ID.String(),
		NotificationURL:   s.opts.NotificationURL,
	}
	if payReq.Installments == 0 && payReq.Token != "" {
		payReq.Installments = 1
	}
	if payReq.Description == "" {
		payReq.Description = itemTitle(b)
	}

	key, err := s.idempotencyKey(ctx, b, req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	p, err := acc.Payments.CreatePayment(callCtx, payReq, key)
	if err != nil {
		s.loggerf("level=error msg=payment submission failed booking_id=%s country=%s err=%v", b.ID, country, err)
		return nil, gatewayError("payment rejected by gateway", err)
	}

	status := s.mapStatus(p)
	entry := ledgerEntry(b, acc, p, commission, payout, payReq.Payer.Email)
	res, err := s.ledger.ApplyPaymentUpdate(ctx, repository.PaymentUpdate{
		BookingID:     b.ID,
		ExternalID:    p.IDString(),
		Status:        status,
		PaymentMethod: p.PaymentMethodID,
		Transaction:   entry,
		At:            s.now(),
	})
	if err != nil {
		// The gateway holds the payment; a later notification records it.
		s.loggerf("level=error msg=payment not recorded locally booking_id=%s external_id=%s err=%v", b.ID, p.IDString(), err)
		return nil, fmt.Errorf("record payment %s: %w", p.IDString(), err)
	}
	s.loggerf("level=info msg=payment processed booking_id=%s external_id=%s gateway_status=%s status=%s confirmed=%t",
		b.ID, p.IDString(), p.Status, status, res.Confirmed)
	s.publish(ctx, b.ID, p.IDString(), country, status, res)

	return &PaymentResponse{
		ID:                    p.IDString(),
		Status:                string(status),
		StatusDetail:          p.StatusDetail,
		TransactionAmount:     p.TransactionAmount,
		Currency:              firstNonEmpty(p.CurrencyID, acc.Currency),
		ExternalTransactionID: p.IDString(),
		PlatformCommission:    commission.InexactFloat64(),
		ProviderAmount:        payout.InexactFloat64(),
		Description:           firstNonEmpty(p.Description, payReq.Description),
		CreatedAt:             p.DateCreated,
	}, nil
}

// GetGatewayPayment returns the payment exactly as the gateway reports it.
func (s *Service) GetGatewayPayment(ctx context.Context, paymentID, country string) (json.RawMessage, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, domain.BadRequestError{Msg: "payment id is required"}
	}
	if strings.TrimSpace(country) == "" {
		country = s.opts.DefaultCountry
	}
	acc, err := s.account(country)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	p, err := acc.Payments.GetPayment(callCtx, paymentID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, domain.NotFoundError{Resource: "payment", ID: paymentID, Err: err}
		}
		return nil, gatewayError("payment lookup failed", err)
	}
	if len(p.Raw) == 0 {
		return json.Marshal(p)
	}
	return p.Raw, nil
}

func (s *Service) PublicKey(country string) (*PublicKeyResponse, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	key, err := s.accounts.PublicKey(country)
	if err != nil {
		return nil, domain.BadRequestError{Msg: fmt.Sprintf("payments are not available for country %q", country), Err: err}
	}
	if key == "" {
		return nil, domain.BadRequestError{Msg: fmt.Sprintf("public key is not configured for country %s", country)}
	}
	return &PublicKeyResponse{PublicKey: key, Country: country}, nil
}

func (s *Service) resolveCountry(b *domain.Booking) string {
	if b.Client != nil {
		if cc := strings.ToUpper(strings.TrimSpace(b.Client.Country)); cc != "" {
			return cc
		}
	}
	return s.opts.DefaultCountry
}

func (s *Service) account(country string) (*gateway.Account, error) {
	acc, err := s.accounts.ClientFor(country)
	if err != nil {
		return nil, domain.BadRequestError{Msg: fmt.Sprintf("payments are not available for country %q", strings.ToUpper(country)), Err: err}
	}
	return acc, nil
}

func (s *Service) mapStatus(p *gateway.Payment) domain.PaymentStatus {
	status, known := MapGatewayStatus(p.Status)
	if !known {
		s.loggerf("level=warn msg=unknown gateway status mapped to PENDING external_id=%s gateway_status=%q", p.IDString(), p.Status)
	}
	return status
}

func (s *Service) publish(ctx context.Context, bookingID uuid.UUID, externalID, country string, status domain.PaymentStatus, res *repository.PaymentUpdateResult) {
	var eventType messaging.EventType
	switch {
	case res.Confirmed:
		eventType = messaging.EventBookingConfirmed
	case res.Cancelled:
		eventType = messaging.EventBookingPaymentFailed
	default:
		return
	}
	err := s.events.Publish(ctx, messaging.Event{
		Type:                  eventType,
		BookingID:             bookingID,
		ExternalTransactionID: externalID,
		Country:               country,
		Status:                string(status),
		OccurredAt:            s.now(),
	})
	if err != nil {
		s.loggerf("level=error msg=event publish failed type=%s booking_id=%s err=%v", eventType, bookingID, err)
	}
}

func ledgerEntry(b *domain.Booking, acc *gateway.Account, p *gateway.Payment, commission, payout decimal.Decimal, payer string) *domain.Transaction {
	meta, _ := json.Marshal(domain.TransactionMetadata{
		PaymentMethodID: p.PaymentMethodID,
		Country:         acc.Country,
		StatusDetail:    p.StatusDetail,
		GatewayStatus:   p.Status,
		PayerEmail:      payer,
	})
	return &domain.Transaction{
		BookingID:          b.ID,
		Type:               domain.TransactionPayment,
		Amount:             b.TotalPrice,
		Currency:           firstNonEmpty(p.CurrencyID, acc.Currency),
		ProviderAmount:     payout,
		PlatformCommission: commission,
		ProcessingFee:      decimal.NewFromFloat(p.TotalFees()).Round(acc.Decimals),
		Gateway:            domain.GatewayMercadoPago,
		Country:            acc.Country,
		Metadata:           datatypes.JSON(meta),
	}
}

// checkPayable refuses bookings a new charge could never confirm: already
// paid, already completed, or cancelled for a reason other than a failed payment.
func checkPayable(b *domain.Booking) error {
	if !domain.CanTransition(b.PaymentStatus, domain.PaymentCompleted) && b.PaymentStatus != domain.PaymentFailed {
		return domain.BadRequestError{Msg: fmt.Sprintf("booking %s is already paid", b.ID)}
	}
	switch b.Status {
	case domain.BookingCompleted:
		return domain.BadRequestError{Msg: fmt.Sprintf("booking %s is already completed", b.ID)}
	case domain.BookingCancelled:
		if b.CancellationReason != domain.CancellationPaymentFailed {
			return domain.BadRequestError{Msg: fmt.Sprintf("booking %s was cancelled", b.ID)}
		}
	}
	return nil
}

// idempotencyKey prefers the caller's key. Otherwise the key is derived from
// the booking, the charge details and the number of recorded attempts, so a
// retry of an unrecorded charge reuses it and a new attempt gets a fresh one.
func (s *Service) idempotencyKey(ctx context.Context, b *domain.Booking, req ProcessPaymentRequest) (string, error) {
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		return key, nil
	}
	attempts, err := s.ledger.ListByBooking(ctx, b.ID)
	if err != nil {
		return "", fmt.Errorf("count payment attempts: %w", err)
	}
	name := fmt.Sprintf("%s|%s|%s|%d", req.PaymentMethodID, req.Token, strings.ToLower(req.PayerEmail), len(attempts))
	return uuid.NewSHA1(b.ID, []byte(name)).String(), nil
}

func parseBookingID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.BadRequestError{Msg: "invalid booking id", Err: err}
	}
	return id, nil
}

// gatewayError keeps timeouts distinguishable; everything else the gateway
// refused is the caller's problem.
func gatewayError(msg string, err error) error {
	if errors.Is(err, gateway.ErrTimeout) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return domain.BadRequestError{Msg: msg, Err: err}
}

func itemTitle(b *domain.Booking) string {
	if b.ServiceName != "" {
		return b.ServiceName
	}
	return "Booking " + b.ID.String()
}

func payerFor(b *domain.Booking, email string) gateway.Payer {
	payer := gateway.Payer{Email: email}
	if b.Client != nil {
		payer.FirstName = b.Client.FirstName
		payer.LastName = b.Client.LastName
		if payer.Email == "" {
			payer.Email = b.Client.Email
		}
	}
	return payer
}

func payerEmail(b *domain.Booking) string {
	if b.Client != nil {
		return b.Client.Email
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
