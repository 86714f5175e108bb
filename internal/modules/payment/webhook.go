package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"petcare/internal/domain"
	"petcare/internal/gateway"
	"petcare/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMalformedWebhook    = errors.New("malformed webhook notification")
	ErrUnresolvablePayment = errors.New("no configured country recognizes the payment")
)

// WebhookInput is an inbound gateway notification as received over HTTP.
type WebhookInput struct {
	Body      []byte
	Query     url.Values
	Signature string
	RequestID string
}

type notification struct {
	Topic      string
	Action     string
	ResourceID string
}

// HandleNotification reconciles local state with the payment a notification
// refers to. Rejected and failed outcomes come with an error; every other
// outcome, including irreconcilable, means the notification is settled.
func (s *Service) HandleNotification(ctx context.Context, in WebhookInput) (domain.WebhookOutcome, error) {
	n, parseErr := parseNotification(in.Body, in.Query)
	event := s.recordEvent(ctx, in, n)

	if parseErr != nil {
		s.loggerf("level=error msg=webhook payload rejected body=%s err=%v", string(in.Body), parseErr)
		s.finishEvent(ctx, event, domain.WebhookFailed, "", parseErr.Error())
		return domain.WebhookFailed, parseErr
	}
	if s.opts.WebhookSecret != "" && !verifySignature(s.opts.WebhookSecret, in.Signature, in.RequestID, n.ResourceID) {
		s.loggerf("level=warn msg=webhook signature mismatch topic=%s resource_id=%s request_id=%s", n.Topic, n.ResourceID, in.RequestID)
		s.finishEvent(ctx, event, domain.WebhookRejected, "", ErrInvalidSignature.Error())
		return domain.WebhookRejected, ErrInvalidSignature
	}
	if !isPaymentTopic(n.Topic) {
		s.loggerf("level=info msg=webhook ignored topic=%s action=%s resource_id=%s", n.Topic, n.Action, n.ResourceID)
		s.finishEvent(ctx, event, domain.WebhookIgnored, "", "not a payment notification")
		return domain.WebhookIgnored, nil
	}

	acc, p, err := s.resolvePayment(ctx, n.ResourceID)
	if err == nil {
		err = s.reconcile(ctx, acc, p)
	}
	country := ""
	if acc != nil {
		country = acc.Country
	}

	switch {
	case err == nil:
		s.finishEvent(ctx, event, domain.WebhookProcessed, country, "gateway_status="+p.Status)
		return domain.WebhookProcessed, nil
	case domain.IsIrreconcilable(err):
		s.loggerf("level=warn msg=webhook irreconcilable topic=%s action=%s resource_id=%s country=%s body=%s err=%v",
			n.Topic, n.Action, n.ResourceID, country, string(in.Body), err)
		s.finishEvent(ctx, event, domain.WebhookIrreconcilable, country, err.Error())
		return domain.WebhookIrreconcilable, nil
	default:
		s.loggerf("level=error msg=webhook reconciliation failed topic=%s resource_id=%s country=%s err=%v",
			n.Topic, n.ResourceID, country, err)
		s.finishEvent(ctx, event, domain.WebhookFailed, country, err.Error())
		return domain.WebhookFailed, err
	}
}

// resolvePayment fetches the payment from the gateway. The country stored on
// a known ledger entry is tried first; otherwise every configured country is
// probed in order and lookup failures move on to the next one.
func (s *Service) resolvePayment(ctx context.Context, paymentID string) (*gateway.Account, *gateway.Payment, error) {
	if paymentID == "" {
		return nil, nil, domain.IrreconcilableError{Reason: "notification carries no payment id"}
	}

	tried := map[string]bool{}
	if tx, err := s.ledger.GetByExternalID(ctx, paymentID); err == nil && tx.Country != "" {
		if acc, err := s.accounts.ClientFor(tx.Country); err == nil {
			tried[acc.Country] = true
			p, err := s.fetchPayment(ctx, acc, paymentID)
			if err == nil {
				return acc, p, nil
			}
			s.loggerf("level=warn msg=payment lookup failed for recorded country, probing others payment_id=%s country=%s err=%v",
				paymentID, acc.Country, err)
		}
	} else if err != nil && !domain.IsNotFound(err) {
		s.loggerf("level=error msg=ledger lookup failed payment_id=%s err=%v", paymentID, err)
	}

	for _, cc := range s.accounts.Countries() {
		if tried[cc] {
			continue
		}
		acc, err := s.accounts.ClientFor(cc)
		if err != nil {
			continue
		}
		p, err := s.fetchPayment(ctx, acc, paymentID)
		if err != nil {
			s.loggerf("level=info msg=payment not resolved in country payment_id=%s country=%s err=%v", paymentID, cc, err)
			continue
		}
		return acc, p, nil
	}
	return nil, nil, domain.IrreconcilableError{ResourceID: paymentID, Err: ErrUnresolvablePayment}
}

func (s *Service) fetchPayment(ctx context.Context, acc *gateway.Account, paymentID string) (*gateway.Payment, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	return acc.Payments.GetPayment(callCtx, paymentID)
}

func (s *Service) reconcile(ctx context.Context, acc *gateway.Account, p *gateway.Payment) error {
	ref := strings.TrimSpace(p.ExternalReference)
	if ref == "" {
		return domain.IrreconcilableError{ResourceID: p.IDString(), Reason: "payment has no external reference"}
	}
	bookingID, err := uuid.Parse(ref)
	if err != nil {
		return domain.IrreconcilableError{ResourceID: p.IDString(), Reason: fmt.Sprintf("external reference %q is not a booking id", ref)}
	}
	b, err := s.bookings.GetWithParties(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.IrreconcilableError{ResourceID: p.IDString(), Reason: "booking " + ref + " not found", Err: err}
		}
		return err
	}

	commission, payout, err := SplitCommission(b.TotalPrice, acc.CommissionPercent, acc.Decimals)
	if err != nil {
		return domain.IrreconcilableError{ResourceID: p.IDString(), Reason: "booking amount cannot be split", Err: err}
	}
	if paid := p.TransactionAmount; paid != 0 && paid != b.TotalPrice.InexactFloat64() {
		s.loggerf("level=warn msg=paid amount differs from booking total booking_id=%s external_id=%s paid=%v total=%s",
			b.ID, p.IDString(), paid, b.TotalPrice)
	}

	status := s.mapStatus(p)
	res, err := s.ledger.ApplyPaymentUpdate(ctx, repository.PaymentUpdate{
		BookingID:       b.ID,
		ExternalID:      p.IDString(),
		Status:          status,
		PaymentMethod:   p.PaymentMethodID,
		Transaction:     ledgerEntry(b, acc, p, commission, payout, payerEmail(b)),
		CancelOnFailure: true,
		At:              s.now(),
	})
	if err != nil {
		return fmt.Errorf("apply payment %s: %w", p.IDString(), err)
	}
	if current := b.PaymentStatus; current.IsTerminal() && current != status && !res.PaymentStatusChanged {
		s.loggerf("level=info msg=stale payment status ignored booking_id=%s external_id=%s current=%s observed=%s",
			b.ID, p.IDString(), current, status)
	}
	s.loggerf("level=info msg=payment reconciled booking_id=%s external_id=%s country=%s gateway_status=%s status=%s created=%t changed=%t confirmed=%t cancelled=%t",
		b.ID, p.IDString(), acc.Country, p.Status, status, res.TransactionCreated, res.PaymentStatusChanged, res.Confirmed, res.Cancelled)
	s.publish(ctx, b.ID, p.IDString(), acc.Country, status, res)
	return nil
}

func (s *Service) recordEvent(ctx context.Context, in WebhookInput, n notification) *domain.WebhookEvent {
	if s.journal == nil {
		return nil
	}
	event := &domain.WebhookEvent{
		Topic:      n.Topic,
		Action:     n.Action,
		ResourceID: n.ResourceID,
		RequestID:  in.RequestID,
		ReceivedAt: s.now(),
	}
	if json.Valid(in.Body) {
		event.Payload = datatypes.JSON(in.Body)
	}
	if err := s.journal.Record(ctx, event); err != nil {
		s.loggerf("level=error msg=webhook journal write failed resource_id=%s err=%v", n.ResourceID, err)
		return nil
	}
	return event
}

func (s *Service) finishEvent(ctx context.Context, event *domain.WebhookEvent, outcome domain.WebhookOutcome, country, detail string) {
	if event == nil {
		return
	}
	if err := s.journal.Finish(ctx, event.ID, outcome, country, detail); err != nil {
		s.loggerf("level=error msg=webhook journal update failed event_id=%s err=%v", event.ID, err)
	}
}

func parseNotification(body []byte, query url.Values) (notification, error) {
	var raw WebhookNotification
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return notification{}, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
		}
	}

	n := notification{Action: raw.Action}
	switch {
	case raw.Type != "":
		n.Topic = raw.Type
		n.ResourceID = string(raw.Data.ID)
	case raw.Topic != "":
		n.Topic = raw.Topic
		n.ResourceID = firstNonEmpty(string(raw.Data.ID), string(raw.ID))
	}

	if n.Topic == "" {
		n.Topic = firstNonEmpty(query.Get("type"), query.Get("topic"))
	}
	if n.ResourceID == "" {
		n.ResourceID = firstNonEmpty(query.Get("data.id"), query.Get("id"))
	}
	n.Topic = strings.ToLower(strings.TrimSpace(n.Topic))
	n.ResourceID = strings.TrimSpace(n.ResourceID)

	if n.Topic == "" {
		return n, fmt.Errorf("%w: missing type", ErrMalformedWebhook)
	}
	return n, nil
}

func isPaymentTopic(topic string) bool {
	return topic == "payment" || strings.HasPrefix(topic, "payment.")
}

// verifySignature checks the x-signature header ("ts=<ts>,v1=<hex>") against
// an HMAC-SHA256 of "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
func verifySignature(secret, header, requestID, dataID string) bool {
	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			ts = strings.TrimSpace(v)
		case "v1":
			v1 = strings.TrimSpace(v)
		}
	}
	if ts == "" || v1 == "" {
		return false
	}
	expected, err := hex.DecodeString(v1)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signatureManifest(dataID, requestID, ts)))
	return hmac.Equal(mac.Sum(nil), expected)
}

func signatureManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	b.WriteString("ts:" + ts + ";")
	return b.String()
}
