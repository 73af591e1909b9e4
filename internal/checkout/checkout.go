package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/arnold/blueprint-api/internal/wizard"
)

// OrderIDPlaceholder is substituted by the payment vendor with the order id
// when it redirects back to the success URL.
const OrderIDPlaceholder = "{order_id}"

const (
	successURLParam = "checkout[custom][success_url]"
	cancelURLParam  = "checkout[custom][cancel_url]"
)

var (
	ErrPersistFailed = errors.New("checkout: failed to persist payment data")
	ErrInvalidOrigin = errors.New("checkout: origin must be an absolute URL")
	ErrNoSnapshot    = errors.New("checkout: no payment data found")
)

// Handoff moves a finished document to the external checkout page.
type Handoff struct {
	Store       *storage.SafeStore
	CheckoutURL string
	// Origin is the absolute base URL the vendor redirects back to.
	Origin    string
	SessionID string
}

// Result is what a successful handoff produced.
type Result struct {
	RedirectURL string
	Snapshot    *models.CheckoutSnapshot
}

// Begin validates the identity fields, persists the checkout snapshot and
// returns the vendor redirect URL. Nothing is persisted when validation
// fails, and no URL is returned when persistence fails.
func (h *Handoff) Begin(ctx context.Context, doc *models.WizardDocument, name, email string) (*Result, error) {
	name, email, err := wizard.ValidateIdentity(name, email)
	if err != nil {
		return nil, err
	}

	redirect, err := h.RedirectURL()
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(doc, name, email)
	if !h.Store.SetItem(ctx, storage.PaymentDataKey, snap) {
		return nil, ErrPersistFailed
	}

	return &Result{RedirectURL: redirect, Snapshot: snap}, nil
}

// NewSnapshot copies what the post-payment pages need out of doc.
func NewSnapshot(doc *models.WizardDocument, name, email string) *models.CheckoutSnapshot {
	d := doc.Clone()
	return &models.CheckoutSnapshot{
		Goals:               d.CompiledGoals(),
		PrimaryCategory:     d.PrimaryCategory,
		SecondaryCategories: d.SecondaryCategories,
		Ratings:             d.Ratings,
		UserName:            name,
		UserEmail:           email,
	}
}

// SuccessURL is the absolute return address after payment. The order id
// placeholder is left unescaped for the vendor to substitute.
func (h *Handoff) SuccessURL() (string, error) {
	origin, err := h.origin()
	if err != nil {
		return "", err
	}
	u := origin + "/success?"
	if h.SessionID != "" {
		u += "session=" + url.QueryEscape(h.SessionID) + "&"
	}
	return u + "order_id=" + OrderIDPlaceholder, nil
}

func (h *Handoff) CancelURL() (string, error) {
	origin, err := h.origin()
	if err != nil {
		return "", err
	}
	u := origin + "/cancel"
	if h.SessionID != "" {
		u += "?session=" + url.QueryEscape(h.SessionID)
	}
	return u, nil
}

// RedirectURL appends the callback parameters to the vendor checkout URL.
func (h *Handoff) RedirectURL() (string, error) {
	success, err := h.SuccessURL()
	if err != nil {
		return "", err
	}
	cancel, err := h.CancelURL()
	if err != nil {
		return "", err
	}

	sep := "?"
	if strings.Contains(h.CheckoutURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%s&%s=%s", h.CheckoutURL, sep,
		successURLParam, url.QueryEscape(success),
		cancelURLParam, url.QueryEscape(cancel)), nil
}

func (h *Handoff) origin() (string, error) {
	u, err := url.Parse(h.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidOrigin
	}
	return u.Scheme + "://" + u.Host, nil
}

// Load reads the checkout snapshot without removing it.
func Load(ctx context.Context, store *storage.SafeStore) (*models.CheckoutSnapshot, error) {
	snap := storage.GetItem[*models.CheckoutSnapshot](ctx, store, storage.PaymentDataKey, nil)
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Consume reads the checkout snapshot and deletes it, so it is delivered
// at most once.
func Consume(ctx context.Context, store *storage.SafeStore) (*models.CheckoutSnapshot, error) {
	snap, err := Load(ctx, store)
	if err != nil {
		return nil, err
	}
	store.RemoveItem(ctx, storage.PaymentDataKey)
	return snap, nil
}
