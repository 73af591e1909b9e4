package checkout

import (
	"context"
	"net/url"
	"testing"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/arnold/blueprint-api/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedDocument() *models.WizardDocument {
	primary := models.CategoryHealth
	doc := models.NewDocument()
	doc.HasStarted = true
	doc.CurrentStep = models.StepSummary
	for _, c := range models.AllCategories {
		doc.Ratings[c] = 6
	}
	doc.PrimaryCategory = &primary
	doc.SecondaryCategories = []models.LifeCategory{models.CategoryFinance}
	doc.SelectedCategories = []models.LifeCategory{models.CategoryHealth, models.CategoryFinance}
	doc.Goals[models.CategoryHealth] = "Run a half marathon"
	doc.Goals[models.CategoryFinance] = "Save six months"
	return doc
}

func newHandoff(store storage.Store) *Handoff {
	return &Handoff{
		Store:       storage.NewSafeStore(store, nil),
		CheckoutURL: "https://shop.lemonsqueezy.com/checkout/buy/abc",
		Origin:      "https://yearinreview.online/wizard?session=x",
		SessionID:   "session_1_abc",
	}
}

func TestBeginPersistsSnapshotAndBuildsRedirect(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore(0)
	h := newHandoff(mem)

	res, err := h.Begin(ctx, finishedDocument(), "  Dana <b>Scully ", "dana@example.com")
	require.NoError(t, err)

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "shop.lemonsqueezy.com", u.Host)
	q := u.Query()
	assert.Equal(t, "https://yearinreview.online/success?session=session_1_abc&order_id={order_id}", q.Get("checkout[custom][success_url]"))
	assert.Equal(t, "https://yearinreview.online/cancel?session=session_1_abc", q.Get("checkout[custom][cancel_url]"))

	snap, err := Load(ctx, h.Store)
	require.NoError(t, err)
	assert.Equal(t, "Dana bScully", snap.UserName)
	assert.Equal(t, "dana@example.com", snap.UserEmail)
	require.Len(t, snap.Goals, 2)
	assert.Equal(t, models.CategoryHealth, snap.Goals[0].Category)
	assert.Equal(t, models.CategoryFinance, snap.Goals[1].Category)
	assert.Equal(t, 6, snap.Ratings[models.CategoryPassion])
}

func TestBeginRejectsInvalidIdentity(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore(0)
	h := newHandoff(mem)

	_, err := h.Begin(ctx, finishedDocument(), "Dana", "not-an-email")
	ve, ok := wizard.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "userEmail", ve.Field)
	assert.Equal(t, "Please enter a valid email address", ve.Message)

	keys, err := mem.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBeginAbortsWhenPersistFails(t *testing.T) {
	h := newHandoff(storage.NewMemoryStore(8))

	res, err := h.Begin(context.Background(), finishedDocument(), "Dana", "dana@example.com")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPersistFailed)
}

func TestRedirectRequiresAbsoluteOrigin(t *testing.T) {
	h := newHandoff(storage.NewMemoryStore(0))
	h.Origin = "/relative"
	_, err := h.RedirectURL()
	assert.ErrorIs(t, err, ErrInvalidOrigin)
}

func TestRedirectKeepsExistingQuery(t *testing.T) {
	h := newHandoff(storage.NewMemoryStore(0))
	h.CheckoutURL = "https://shop.lemonsqueezy.com/checkout/buy/abc?embed=1"
	h.SessionID = ""

	raw, err := h.RedirectURL()
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("embed"))
	assert.Equal(t, "https://yearinreview.online/success?order_id={order_id}", u.Query().Get("checkout[custom][success_url]"))
}

func TestConsumeDeliversOnce(t *testing.T) {
	ctx := context.Background()
	h := newHandoff(storage.NewMemoryStore(0))
	_, err := h.Begin(ctx, finishedDocument(), "Dana", "dana@example.com")
	require.NoError(t, err)

	snap, err := Consume(ctx, h.Store)
	require.NoError(t, err)
	assert.Equal(t, "Dana", snap.UserName)

	_, err = Consume(ctx, h.Store)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotAndAutosaveKeysNeverCollide(t *testing.T) {
	assert.False(t, storage.IsSessionKey(storage.PaymentDataKey))
	assert.NotEqual(t, storage.PaymentDataKey, storage.SessionKey("session_1_abc"))
}
