package autosave

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/arnold/blueprint-api/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func suffix() string { return "abc123xyz" }

type countingStore struct {
	storage.Store
	mu     sync.Mutex
	writes int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Store.Set(ctx, key, value)
}

func (c *countingStore) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) FireLive() int {
	fired := 0
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			t.f()
			fired++
		}
	}
	return fired
}

func newSession(t *testing.T, store storage.Store) *SessionContext {
	t.Helper()
	sc, err := ResolveSession("https://yearinreview.online/wizard", storage.NewSafeStore(store, nil), clock, suffix)
	require.NoError(t, err)
	return sc
}

func TestResolveSessionMintsAndWritesBack(t *testing.T) {
	sc := newSession(t, storage.NewMemoryStore(0))

	assert.Equal(t, "session_1773480600000_abc123xyz", sc.ID)
	assert.Equal(t, "session_1773480600000_abc123xyz", sc.URL.Query().Get(SessionParam))
	assert.Equal(t, "wizard_session_1773480600000_abc123xyz", sc.Key())
	assert.Equal(t, "https://yearinreview.online/wizard?session=session_1773480600000_abc123xyz", sc.ResumeLink())
}

func TestResolveSessionReadsExistingID(t *testing.T) {
	sc, err := ResolveSession("https://yearinreview.online/wizard?utm=x&session=session_1_zzz", storage.NewSafeStore(storage.NewMemoryStore(0), nil), clock, suffix)
	require.NoError(t, err)
	assert.Equal(t, "session_1_zzz", sc.ID)

	link, err := url.Parse(sc.ResumeLink())
	require.NoError(t, err)
	assert.Equal(t, url.Values{"session": {"session_1_zzz"}}, link.Query())
}

func TestRandomSuffixShape(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{9}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, RandomSuffix())
	}
	assert.Regexp(t, `^session_\d+_[0-9a-z]{9}$`, NewSessionID(time.Now, RandomSuffix))
}

func TestRapidMutationsWriteOnce(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore(0)}
	sc := newSession(t, store)
	sched := &fakeScheduler{}
	saver := NewAutosaver(sc, Options{AfterFunc: sched.AfterFunc})

	ctrl := wizard.NewController(nil, saver.Schedule)
	ctrl.Start()
	for i, c := range models.AllCategories {
		require.NoError(t, ctrl.SetRating(c, i+1))
	}
	require.NoError(t, ctrl.SetRating(models.CategoryHealth, 9))

	assert.Zero(t, store.Writes())
	assert.Equal(t, 1, sched.FireLive())
	assert.Equal(t, 1, store.Writes())

	saved, ok := sc.Saved(context.Background())
	require.True(t, ok)
	assert.Equal(t, 9, saved.Ratings[models.CategoryHealth])
	assert.Equal(t, 6, saved.Ratings[models.CategoryPassion])
	assert.Equal(t, fixedNow.UnixMilli(), saved.SavedAt)
}

func TestRapidMutationsWriteOnceRealTimer(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore(0)}
	sc := newSession(t, store)
	saver := NewAutosaver(sc, Options{Delay: 50 * time.Millisecond})
	defer saver.Stop()

	doc := models.NewDocument()
	for i := 1; i <= 10; i++ {
		doc.Ratings[models.CategoryHealth] = i
		saver.Schedule(doc.Clone())
	}

	require.Eventually(t, func() bool { return store.Writes() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, store.Writes())

	saved, ok := sc.Saved(context.Background())
	require.True(t, ok)
	assert.Equal(t, 10, saved.Ratings[models.CategoryHealth])
}

func TestStatusEvents(t *testing.T) {
	sc := newSession(t, storage.NewMemoryStore(0))
	sched := &fakeScheduler{}
	var got []Status
	saver := NewAutosaver(sc, Options{
		AfterFunc: sched.AfterFunc,
		OnStatus:  func(s Status, _ int64) { got = append(got, s) },
	})

	saver.Schedule(models.NewDocument())
	sched.FireLive()
	assert.Equal(t, []Status{StatusSaving, StatusSaved}, got)
	assert.Equal(t, fixedNow.UnixMilli(), saver.LastSaved())
}

func TestStatusFailedOnFullStore(t *testing.T) {
	sc := newSession(t, storage.NewMemoryStore(10))
	var got []Status
	saver := NewAutosaver(sc, Options{
		AfterFunc: (&fakeScheduler{}).AfterFunc,
		OnStatus:  func(s Status, _ int64) { got = append(got, s) },
	})

	saver.Schedule(models.NewDocument())
	assert.False(t, saver.Flush(context.Background()))
	assert.Equal(t, []Status{StatusSaving, StatusFailed}, got)
}

func TestFlushAndStop(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore(0)}
	sc := newSession(t, store)
	sched := &fakeScheduler{}
	saver := NewAutosaver(sc, Options{AfterFunc: sched.AfterFunc})

	assert.True(t, saver.Flush(context.Background()))
	assert.Zero(t, store.Writes())

	saver.Schedule(models.NewDocument())
	assert.True(t, saver.Flush(context.Background()))
	assert.Equal(t, 1, store.Writes())
	assert.Zero(t, sched.FireLive())

	saver.Stop()
	saver.Schedule(models.NewDocument())
	assert.Zero(t, sched.FireLive())
	assert.Equal(t, 1, store.Writes())
}

func TestResumeRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	sc := newSession(t, storage.NewMemoryStore(0))

	asked := 0
	accept := func(*models.WizardDocument) bool { asked++; return true }

	_, ok := sc.Resume(ctx, false, accept)
	assert.False(t, ok, "nothing saved yet")

	notStarted := models.NewDocument()
	require.True(t, sc.Store.SetItem(ctx, sc.Key(), notStarted))
	_, ok = sc.Resume(ctx, false, accept)
	assert.False(t, ok)
	assert.Zero(t, asked)

	started := models.NewDocument()
	started.HasStarted = true
	started.CurrentStep = models.StepGoals
	require.True(t, sc.Store.SetItem(ctx, sc.Key(), started))

	_, ok = sc.Resume(ctx, true, accept)
	assert.False(t, ok, "already started in this page life")
	assert.Zero(t, asked)

	doc, ok := sc.Resume(ctx, false, accept)
	require.True(t, ok)
	assert.Equal(t, 1, asked)
	assert.Equal(t, models.StepGoals, doc.CurrentStep)

	_, ok = sc.Resume(ctx, false, func(*models.WizardDocument) bool { return false })
	assert.False(t, ok)
	_, stillThere := sc.Saved(ctx)
	assert.True(t, stillThere, "declining keeps the saved document")

	sc.Clear(ctx)
	_, stillThere = sc.Saved(ctx)
	assert.False(t, stillThere)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID("session_1773480600000_abc123xyz"))
	assert.False(t, ValidSessionID("payment_data"))
	assert.False(t, ValidSessionID("session_x_abc"))
	assert.False(t, ValidSessionID("session_1_ABC"))
}
