package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/metrics"
	backoff "github.com/cenkalti/backoff/v4"
)

const vendorName = "lemonsqueezy"

type ErrorKind string

const (
	// KindNotFound is a vendor 404.
	KindNotFound ErrorKind = "not_found"
	// KindUnauthorized is a vendor 401, a credential problem on our side.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindRejected is any other definitive non-2xx answer.
	KindRejected ErrorKind = "rejected"
	// KindUnavailable covers transport failures, timeouts and transient
	// statuses that outlived every retry.
	KindUnavailable ErrorKind = "unavailable"
	// KindMalformed is a 2xx answer that could not be decoded.
	KindMalformed ErrorKind = "malformed"
)

type VendorError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *VendorError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("lemon squeezy %s: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("lemon squeezy %s: status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("lemon squeezy %s", e.Kind)
}

func (e *VendorError) Unwrap() error { return e.Err }

// transient reports whether a status is worth retrying.
func transient(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

// Lemon Squeezy DTOs
type OrderAttributes struct {
	Status      string `json:"status"`
	OrderNumber int    `json:"order_number"`
	UserEmail   string `json:"user_email"`
	UserName    string `json:"user_name"`
	CustomerID  int    `json:"customer_id"`
	Total       int    `json:"total"`
	CreatedAt   string `json:"created_at"`
}

type Resource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes OrderAttributes `json:"attributes"`
}

type resourceDocument struct {
	Data Resource `json:"data"`
}

// LemonSqueezy reads orders and checkouts. Every attempt is bounded by
// Timeout; transient failures are retried with exponential backoff up to
// MaxRetries times.
type LemonSqueezy struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	// NewBackOff builds the retry schedule for one call.
	NewBackOff func() backoff.BackOff
	Metrics    *metrics.Metrics
}

func NewLemonSqueezy(cfg *config.Config) *LemonSqueezy {
	return &LemonSqueezy{
		APIKey:     cfg.LemonSqueezyAPIKey,
		BaseURL:    cfg.LemonSqueezyAPIBase,
		Timeout:    cfg.VendorTimeout,
		MaxRetries: cfg.VendorMaxRetries,
		HTTPClient: &http.Client{},
		NewBackOff: defaultBackOff,
		Metrics:    metrics.Default,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	return b
}

// Configured reports whether an API key is present.
func (c *LemonSqueezy) Configured() bool {
	return c.APIKey != ""
}

func (c *LemonSqueezy) GetOrder(ctx context.Context, id string) (*Resource, error) {
	return c.get(ctx, "/orders/"+url.PathEscape(id))
}

func (c *LemonSqueezy) GetCheckout(ctx context.Context, id string) (*Resource, error) {
	return c.get(ctx, "/checkouts/"+url.PathEscape(id))
}

func (c *LemonSqueezy) get(ctx context.Context, path string) (*Resource, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path

	var out *Resource
	operation := func() error {
		start := time.Now()
		res, err := c.attempt(ctx, endpoint)
		elapsed := time.Since(start)

		var ve *VendorError
		switch {
		case err == nil:
			c.Metrics.RecordVendorAttempt(vendorName, "ok", elapsed)
			out = res
			return nil
		case errors.As(err, &ve) && ve.Kind == KindUnavailable:
			log.Printf("verify: transient failure on %s: %v", path, err)
			c.Metrics.RecordVendorAttempt(vendorName, "retry", elapsed)
			return err
		default:
			c.Metrics.RecordVendorAttempt(vendorName, "fail", elapsed)
			return backoff.Permanent(err)
		}
	}

	newBackOff := c.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		var ve *VendorError
		if !errors.As(err, &ve) {
			// The caller's context ended between attempts.
			err = &VendorError{Kind: KindUnavailable, Err: err}
		}
		return nil, err
	}
	return out, nil
}

func (c *LemonSqueezy) attempt(ctx context.Context, endpoint string) (*Resource, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &VendorError{Kind: KindRejected, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &VendorError{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &VendorError{Kind: KindUnavailable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("verify: Lemon Squeezy API error: status=%d body=%s", resp.StatusCode, truncate(string(body), 512))
		kind := KindRejected
		switch {
		case resp.StatusCode == http.StatusNotFound:
			kind = KindNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			kind = KindUnauthorized
		case transient(resp.StatusCode):
			kind = KindUnavailable
		}
		return nil, &VendorError{Kind: kind, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var doc resourceDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &VendorError{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: err}
	}
	return &doc.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
