package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/models"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Signature"

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature compares in constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	want := Sign(secret, body)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// Mailer sends the confirmation email for a new order.
type Mailer interface {
	SendBlueprintReady(ctx context.Context, req models.SendEmailRequest) error
}

// Result is the HTTP answer for one delivery.
type Result struct {
	Status int
	Body   map[string]any
	// Event is nil when the request was rejected before parsing.
	Event Event
}

// Relay authenticates vendor events and fires at most one email per order
// event. Failures after authentication are logged and acknowledged so the
// vendor does not redeliver.
type Relay struct {
	Secret  string
	Mailer  Mailer
	Now     func() time.Time
	Metrics *metrics.Metrics
}

func (r *Relay) Handle(ctx context.Context, body []byte, signature string) Result {
	if r.Secret == "" {
		log.Println("webhook: Missing LEMON_SQUEEZY_WEBHOOK_SECRET")
		return Result{Status: 500, Body: map[string]any{"error": "Webhook not configured"}}
	}
	if !ValidSignature(r.Secret, body, signature) {
		log.Println("webhook: Invalid webhook signature")
		r.Metrics.RecordWebhook("unknown", "rejected")
		return Result{Status: 401, Body: map[string]any{"error": "Invalid signature"}}
	}

	ev, err := Parse(body)
	if err != nil {
		log.Printf("webhook: %v", err)
		r.Metrics.RecordWebhook("unknown", "malformed")
		return Result{Status: 200, Body: map[string]any{"received": true}}
	}

	res := Result{Status: 200, Body: map[string]any{"received": true}, Event: ev}
	switch e := ev.(type) {
	case OrderCreated:
		log.Printf("webhook: New order received: id=%s number=%d email=%s status=%s", e.OrderID, e.OrderNumber, e.Email, e.Status)
		if err := r.notify(ctx, e); err != nil {
			log.Printf("webhook: Error processing order %s: %v", e.OrderID, err)
			r.Metrics.RecordWebhook(e.EventName(), "error")
			res.Body["error"] = "Processing error"
			return res
		}
	case SubscriptionCreated:
		log.Printf("webhook: New subscription: %s", e.SubscriptionID)
	case Unhandled:
		log.Printf("webhook: Unknown webhook event: %q", e.Name)
	}
	r.Metrics.RecordWebhook(ev.EventName(), "ok")
	return res
}

// notify sends the order email once. Panics in the mailer are turned into
// errors.
func (r *Relay) notify(ctx context.Context, e OrderCreated) (err error) {
	if r.Mailer == nil {
		return nil
	}
	if e.Email == "" {
		return fmt.Errorf("order %s has no email", e.OrderID)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("mailer panic: %v", p)
		}
	}()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	name := e.UserName
	if name == "" {
		name, _, _ = strings.Cut(e.Email, "@")
	}
	return r.Mailer.SendBlueprintReady(ctx, models.SendEmailRequest{
		To:       e.Email,
		UserName: name,
		Year:     config.TargetYear(now()),
	})
}
