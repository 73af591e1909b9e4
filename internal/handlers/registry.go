package handlers

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/arnold/blueprint-api/internal/autosave"
	"github.com/arnold/blueprint-api/internal/metrics"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/arnold/blueprint-api/internal/wizard"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultLiveSessions = 1024

type SessionOptions struct {
	// Origin is the absolute base of resume links.
	Origin string
	Delay  time.Duration
	// Capacity bounds the number of sessions kept in memory. A session
	// pushed out by capacity is flushed, and its saved document is restored
	// without confirmation the next time it is opened.
	Capacity  int
	Metrics   *metrics.Metrics
	Now       autosave.Clock
	Suffix    autosave.IDSource
	AfterFunc autosave.AfterFunc
}

// wizardSession is one live wizard: controller, autosaver and its view of
// local storage. mu serializes requests for the same session.
type wizardSession struct {
	mu    sync.Mutex
	ctx   *autosave.SessionContext
	ctrl  *wizard.Controller
	saver *autosave.Autosaver
}

// SessionRegistry keeps live sessions in an LRU over a shared store. Each
// session sees the store through its own namespace.
type SessionRegistry struct {
	base storage.Store
	opts SessionOptions

	mu      sync.Mutex
	live    *lru.Cache[string, *wizardSession]
	// parked holds ids evicted by capacity, as opposed to closed.
	parked  *lru.Cache[string, struct{}]
	closing bool
}

func NewSessionRegistry(base storage.Store, opts SessionOptions) *SessionRegistry {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultLiveSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Suffix == nil {
		opts.Suffix = autosave.RandomSuffix
	}
	opts.Origin = strings.TrimRight(opts.Origin, "/")

	r := &SessionRegistry{base: base, opts: opts}
	live, err := lru.NewWithEvict[string, *wizardSession](opts.Capacity, r.evicted)
	if err != nil {
		panic(err)
	}
	r.live = live
	r.parked, err = lru.New[string, struct{}](opts.Capacity)
	if err != nil {
		panic(err)
	}
	return r
}

// Create mints a new session id and opens it.
func (r *SessionRegistry) Create() (*wizardSession, error) {
	return r.Open(autosave.NewSessionID(r.opts.Now, r.opts.Suffix))
}

// Open returns the live session for id, building it on first use.
func (r *SessionRegistry) Open(id string) (*wizardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.live.Get(id); ok {
		return s, nil
	}

	s, err := r.build(id)
	if err != nil {
		return nil, err
	}
	if r.parked.Remove(id) {
		if doc, found := s.ctx.Saved(context.Background()); found && doc.HasStarted {
			s.ctrl = wizard.NewController(doc, s.saver.Schedule)
		}
	}
	r.live.Add(id, s)
	r.opts.Metrics.SessionOpened()
	return s, nil
}

// Close flushes and forgets a live session. Stored data is kept, and the
// next open asks for confirmation before restoring it.
func (r *SessionRegistry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closing = true
	r.live.Remove(id)
	r.closing = false
}

// CloseAll flushes every live session, for shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closing = true
	r.live.Purge()
	r.closing = false
}

func (r *SessionRegistry) Len() int {
	return r.live.Len()
}

func (r *SessionRegistry) build(id string) (*wizardSession, error) {
	store := storage.NewSafeStore(storage.Namespace(r.base, id), func(level storage.NoticeLevel, message string) {
		log.Printf("storage: session %s: %s", id, message)
		WS.Broadcast(id, WSEvent{Type: EventNotice, Level: string(level), Message: message})
	})

	rawURL := r.opts.Origin + "/?" + url.Values{autosave.SessionParam: {id}}.Encode()
	sc, err := autosave.ResolveSession(rawURL, store, r.opts.Now, r.opts.Suffix)
	if err != nil {
		return nil, err
	}

	m := r.opts.Metrics
	saver := autosave.NewAutosaver(sc, autosave.Options{
		Delay:     r.opts.Delay,
		AfterFunc: r.opts.AfterFunc,
		OnStatus: func(status autosave.Status, savedAt int64) {
			switch status {
			case autosave.StatusSaved:
				m.RecordAutosave(true)
			case autosave.StatusFailed:
				m.RecordAutosave(false)
			}
			WS.Broadcast(id, WSEvent{Type: string(status), SavedAt: savedAt})
		},
	})

	return &wizardSession{
		ctx:   sc,
		ctrl:  wizard.NewController(nil, saver.Schedule),
		saver: saver,
	}, nil
}

func (r *SessionRegistry) evicted(id string, s *wizardSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saver.Flush(context.Background()) {
		log.Printf("autosave: final write for %s failed", id)
	}
	s.saver.Stop()
	if !r.closing {
		r.parked.Add(id, struct{}{})
	}
	r.opts.Metrics.SessionClosed()
}
