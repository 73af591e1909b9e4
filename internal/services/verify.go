package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/models"
)

// DownloadTokenTTL is how long a verification's download token is presented
// as valid.
const DownloadTokenTTL = 24 * time.Hour

// OrderReader is the vendor read API the verifier depends on.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*Resource, error)
	GetCheckout(ctx context.Context, id string) (*Resource, error)
}

// TokenFunc issues the hand-back token for a verified payment.
type TokenFunc func(orderID, email string, expiresAt time.Time) (string, error)

type Outcome string

const (
	OutcomePaid          Outcome = "paid"
	OutcomeUnpaid        Outcome = "unpaid"
	OutcomeMissingID     Outcome = "missing_id"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeMisconfigured Outcome = "misconfigured"
	OutcomeRejected      Outcome = "rejected"
	OutcomeUnavailable   Outcome = "unavailable"
	OutcomeFailed        Outcome = "failed"
)

// Verification is the result of one verification request, ready to be
// written as an HTTP answer.
type Verification struct {
	Outcome    Outcome
	HTTPStatus int
	Message    string
	Identifier string
	IsOrder    bool
	// VendorStatus is the vendor's HTTP status for rejected calls.
	VendorStatus int
	// PaymentStatus is the vendor's order status.
	PaymentStatus string
	Payment       *models.VerifyPaymentResponse
}

// Body is the JSON payload answered for v.
func (v *Verification) Body() map[string]any {
	switch v.Outcome {
	case OutcomePaid:
		return map[string]any{
			"verified":      v.Payment.Verified,
			"status":        v.Payment.Status,
			"downloadToken": v.Payment.DownloadToken,
			"expiresAt":     v.Payment.ExpiresAt,
			"orderNumber":   v.Payment.OrderNumber,
			"email":         v.Payment.Email,
			"total":         v.Payment.Total,
		}
	case OutcomeUnpaid:
		return map[string]any{"error": v.Message, "status": v.PaymentStatus}
	case OutcomeNotFound:
		return map[string]any{"error": v.Message, "paymentIdentifier": v.Identifier}
	case OutcomeRejected:
		return map[string]any{"error": v.Message, "statusCode": v.VendorStatus}
	}
	return map[string]any{"error": v.Message}
}

// Verifier checks a payment with the vendor. It keeps no state between
// calls.
type Verifier struct {
	Vendor     OrderReader
	Configured bool
	IssueToken TokenFunc
	Now        func() time.Time
	Metrics    *metrics.Metrics
}

// Verify resolves an order id, or a legacy checkout id when no order id is
// given, to a verification outcome.
func (v *Verifier) Verify(ctx context.Context, req models.VerifyPaymentRequest) *Verification {
	res := v.verify(ctx, req)
	v.Metrics.RecordVerification(string(res.Outcome))
	return res
}

func (v *Verifier) verify(ctx context.Context, req models.VerifyPaymentRequest) *Verification {
	orderID := strings.TrimSpace(req.OrderID)
	checkoutID := strings.TrimSpace(req.CheckoutID)

	id, isOrder := orderID, true
	if id == "" {
		id, isOrder = checkoutID, false
	}
	if id == "" {
		return &Verification{Outcome: OutcomeMissingID, HTTPStatus: 400, Message: "Missing order ID or checkout ID"}
	}

	if !v.Configured {
		log.Println("verify: Missing LEMON_SQUEEZY_API_KEY, payment verification unavailable")
		return &Verification{Outcome: OutcomeNotConfigured, HTTPStatus: 500, Message: "Payment verification unavailable", Identifier: id, IsOrder: isOrder}
	}

	var (
		resource *Resource
		err      error
	)
	if isOrder {
		resource, err = v.Vendor.GetOrder(ctx, id)
	} else {
		resource, err = v.Vendor.GetCheckout(ctx, id)
	}
	if err != nil {
		return v.failure(id, isOrder, err)
	}

	status := resource.Attributes.Status
	if status != "paid" && status != "success" {
		return &Verification{
			Outcome:       OutcomeUnpaid,
			HTTPStatus:    402,
			Message:       "Payment not completed",
			Identifier:    id,
			IsOrder:       isOrder,
			PaymentStatus: status,
		}
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	expires := now().Add(DownloadTokenTTL)

	// The token is a hand-back artifact only; nothing checks it yet.
	var token string
	if v.IssueToken != nil {
		token, err = v.IssueToken(resource.ID, resource.Attributes.UserEmail, expires)
		if err != nil {
			log.Printf("verify: failed to issue download token for %s: %v", id, err)
			return &Verification{Outcome: OutcomeFailed, HTTPStatus: 500, Message: "Verification failed. Please contact support if issue persists.", Identifier: id, IsOrder: isOrder}
		}
	}

	log.Printf("verify: payment %s verified (order #%d)", id, resource.Attributes.OrderNumber)
	return &Verification{
		Outcome:       OutcomePaid,
		HTTPStatus:    200,
		Identifier:    id,
		IsOrder:       isOrder,
		PaymentStatus: status,
		Payment: &models.VerifyPaymentResponse{
			Verified:      true,
			Status:        status,
			DownloadToken: token,
			ExpiresAt:     expires.UnixMilli(),
			OrderNumber:   resource.Attributes.OrderNumber,
			Email:         resource.Attributes.UserEmail,
			Total:         resource.Attributes.Total,
		},
	}
}

func (v *Verifier) failure(id string, isOrder bool, err error) *Verification {
	out := &Verification{Identifier: id, IsOrder: isOrder}

	var ve *VendorError
	if !errors.As(err, &ve) {
		log.Printf("verify: payment verification exception for %s: %v", id, err)
		out.Outcome, out.HTTPStatus = OutcomeFailed, 500
		out.Message = "Verification failed. Please contact support if issue persists."
		return out
	}

	log.Printf("verify: vendor error for %s (order=%t): %v", id, isOrder, err)
	switch ve.Kind {
	case KindNotFound:
		out.Outcome, out.HTTPStatus = OutcomeNotFound, 404
		out.Message = "Checkout not found. Please contact support."
		if isOrder {
			out.Message = "Order not found. Please contact support."
		}
	case KindUnauthorized:
		out.Outcome, out.HTTPStatus = OutcomeMisconfigured, 500
		out.Message = "Payment service configuration error. Please contact support."
	case KindUnavailable:
		out.Outcome, out.HTTPStatus = OutcomeUnavailable, 503
		out.Message = "Payment service temporarily unavailable. Please try again in a moment."
	case KindMalformed:
		out.Outcome, out.HTTPStatus = OutcomeFailed, 500
		out.Message = "Verification failed. Please contact support if issue persists."
	default:
		out.Outcome, out.HTTPStatus = OutcomeRejected, 400
		out.Message = "Unable to verify payment. Please try again or contact support."
		out.VendorStatus = ve.StatusCode
	}
	return out
}
