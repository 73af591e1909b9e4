package autosave

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/arnold/blueprint-api/internal/models"
)

const DefaultDelay = 2 * time.Second

type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusFailed Status = "save_failed"
)

// StatusFunc observes save progress. savedAt is unix milliseconds.
type StatusFunc func(status Status, savedAt int64)

// Timer is the part of *time.Timer the autosaver needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	Delay     time.Duration
	OnStatus  StatusFunc
	AfterFunc AfterFunc
}

// Autosaver debounces document writes: every Schedule restarts the timer
// and only the latest document is written once the delay passes quietly.
type Autosaver struct {
	session *SessionContext
	delay   time.Duration
	status  StatusFunc
	after   AfterFunc

	mu      sync.Mutex
	timer   Timer
	pending *models.WizardDocument
	seq     uint64
	stopped bool

	saveMu    sync.Mutex
	savedSeq  uint64
	lastSaved int64
}

func NewAutosaver(session *SessionContext, opts Options) *Autosaver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.OnStatus == nil {
		opts.OnStatus = func(Status, int64) {}
	}
	return &Autosaver{
		session: session,
		delay:   opts.Delay,
		status:  opts.OnStatus,
		after:   opts.AfterFunc,
	}
}

// Schedule queues doc for writing. It matches wizard.ChangeFunc.
func (a *Autosaver) Schedule(doc *models.WizardDocument) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}

	a.pending = doc
	a.seq++
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.after(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	doc, seq := a.take()
	if doc == nil {
		return
	}
	a.save(context.Background(), doc, seq)
}

func (a *Autosaver) take() (*models.WizardDocument, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc := a.pending
	a.pending = nil
	a.timer = nil
	return doc, a.seq
}

func (a *Autosaver) save(ctx context.Context, doc *models.WizardDocument, seq uint64) bool {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	// A newer document has already been written.
	if seq <= a.savedSeq {
		return true
	}

	a.status(StatusSaving, a.lastSaved)

	doc = doc.Clone()
	doc.SavedAt = a.session.Now().UnixMilli()
	if !a.session.Store.SetItem(ctx, a.session.Key(), doc) {
		log.Printf("autosave: write for %s failed", a.session.ID)
		a.status(StatusFailed, a.lastSaved)
		return false
	}

	a.savedSeq = seq
	a.lastSaved = doc.SavedAt
	a.status(StatusSaved, doc.SavedAt)
	return true
}

// Flush writes any pending document now. It reports false when the write
// failed.
func (a *Autosaver) Flush(ctx context.Context) bool {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	doc, seq := a.take()
	if doc == nil {
		return true
	}
	return a.save(ctx, doc, seq)
}

// Stop cancels any pending write. Later Schedule calls are ignored.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// LastSaved is the unix-millisecond time of the last successful write.
func (a *Autosaver) LastSaved() int64 {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return a.lastSaved
}
