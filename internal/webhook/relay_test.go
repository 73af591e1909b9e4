package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "whsec_test"

const orderBody = `{"meta":{"event_name":"order_created"},"data":{"id":"99","attributes":{"status":"paid","user_email":"dana@example.com","order_number":12}}}`

type fakeMailer struct {
	calls []models.SendEmailRequest
	err   error
	panic bool
}

func (f *fakeMailer) SendBlueprintReady(_ context.Context, req models.SendEmailRequest) error {
	f.calls = append(f.calls, req)
	if f.panic {
		panic("smtp exploded")
	}
	return f.err
}

func newRelay(m *fakeMailer) *Relay {
	return &Relay{
		Secret: secret,
		Mailer: m,
		Now:    func() time.Time { return time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC) },
	}
}

func TestSignature(t *testing.T) {
	body := []byte(orderBody)
	sig := Sign(secret, body)
	assert.Len(t, sig, 64)
	assert.True(t, ValidSignature(secret, body, sig))
	assert.False(t, ValidSignature(secret, append(body, ' '), sig))
	assert.False(t, ValidSignature("other", body, sig))
	assert.False(t, ValidSignature(secret, body, ""))
}

func TestBadSignatureSendsNothing(t *testing.T) {
	m := &fakeMailer{}
	res := newRelay(m).Handle(context.Background(), []byte(orderBody), Sign(secret, []byte("something else")))

	assert.Equal(t, 401, res.Status)
	assert.Equal(t, "Invalid signature", res.Body["error"])
	assert.Nil(t, res.Event)
	assert.Empty(t, m.calls)
}

func TestMissingSecret(t *testing.T) {
	m := &fakeMailer{}
	r := newRelay(m)
	r.Secret = ""
	res := r.Handle(context.Background(), []byte(orderBody), "")
	assert.Equal(t, 500, res.Status)
	assert.Equal(t, "Webhook not configured", res.Body["error"])
	assert.Empty(t, m.calls)
}

func TestOrderCreatedSendsOneEmail(t *testing.T) {
	m := &fakeMailer{}
	res := newRelay(m).Handle(context.Background(), []byte(orderBody), Sign(secret, []byte(orderBody)))

	assert.Equal(t, 200, res.Status)
	assert.Equal(t, map[string]any{"received": true}, res.Body)
	require.Len(t, m.calls, 1)
	assert.Equal(t, models.SendEmailRequest{To: "dana@example.com", UserName: "dana", Year: 2027}, m.calls[0])

	order, ok := res.Event.(OrderCreated)
	require.True(t, ok)
	assert.Equal(t, 12, order.OrderNumber)
}

func TestEmailFailureIsSwallowed(t *testing.T) {
	for name, m := range map[string]*fakeMailer{
		"error": {err: errors.New("provider down")},
		"panic": {panic: true},
	} {
		t.Run(name, func(t *testing.T) {
			res := newRelay(m).Handle(context.Background(), []byte(orderBody), Sign(secret, []byte(orderBody)))
			assert.Equal(t, 200, res.Status)
			assert.Equal(t, true, res.Body["received"])
			assert.Len(t, m.calls, 1, "no retry")
		})
	}
}

func TestOtherEventsAreAcknowledged(t *testing.T) {
	for _, body := range []string{
		`{"meta":{"event_name":"subscription_created"},"data":{"id":"s1"}}`,
		`{"meta":{"event_name":"order_refunded"},"data":{"id":"1"}}`,
		`not json`,
	} {
		m := &fakeMailer{}
		res := newRelay(m).Handle(context.Background(), []byte(body), Sign(secret, []byte(body)))
		assert.Equal(t, 200, res.Status, body)
		assert.Empty(t, m.calls)
	}
}

func TestParseVariants(t *testing.T) {
	ev, err := Parse([]byte(`{"meta":{"event_name":"subscription_created"},"data":{"id":"s1"}}`))
	require.NoError(t, err)
	assert.Equal(t, SubscriptionCreated{SubscriptionID: "s1"}, ev)

	ev, err = Parse([]byte(`{"meta":{"event_name":"order_refunded"}}`))
	require.NoError(t, err)
	assert.Equal(t, Unhandled{Name: "order_refunded"}, ev)
	assert.Equal(t, "order_refunded", ev.EventName())

	_, err = Parse([]byte(`[`))
	assert.Error(t, err)
}
