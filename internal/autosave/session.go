package autosave

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arnold/blueprint-api/internal/models"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/google/uuid"
)

// SessionParam is the query parameter carrying the session id.
const SessionParam = "session"

const suffixLen = 9

// Clock and IDSource are injected so sessions can be minted in tests.
type Clock func() time.Time

type IDSource func() string

// RandomSuffix returns nine base36 characters drawn from a random uuid.
func RandomSuffix() string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8])
	s := strconv.FormatUint(n, 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s[len(s)-suffixLen:]
}

// NewSessionID mints "session_<unix-ms>_<suffix>".
func NewSessionID(now Clock, suffix IDSource) string {
	return fmt.Sprintf("session_%d_%s", now().UnixMilli(), suffix())
}

// SessionContext binds one client's session id to its store. It replaces
// the page URL and local storage a browser tab would use.
type SessionContext struct {
	ID    string
	URL   *url.URL
	Store *storage.SafeStore
	Now   Clock
}

// ResolveSession reads the session id from rawURL or mints a new one and
// writes it back into the URL, so reloading the URL resumes the session.
func ResolveSession(rawURL string, store *storage.SafeStore, now Clock, suffix IDSource) (*SessionContext, error) {
	if now == nil {
		now = time.Now
	}
	if suffix == nil {
		suffix = RandomSuffix
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse session url: %w", err)
	}

	q := u.Query()
	id := q.Get(SessionParam)
	if id == "" {
		id = NewSessionID(now, suffix)
		q.Set(SessionParam, id)
		u.RawQuery = q.Encode()
	}

	return &SessionContext{ID: id, URL: u, Store: store, Now: now}, nil
}

// Key is the autosave key of this session.
func (s *SessionContext) Key() string {
	return storage.SessionKey(s.ID)
}

// ResumeLink is origin + path + ?session=<id>.
func (s *SessionContext) ResumeLink() string {
	u := *s.URL
	u.RawQuery = url.Values{SessionParam: {s.ID}}.Encode()
	u.Fragment = ""
	return u.String()
}

// Saved returns the autosaved document, if any.
func (s *SessionContext) Saved(ctx context.Context) (*models.WizardDocument, bool) {
	doc := storage.GetItem[*models.WizardDocument](ctx, s.Store, s.Key(), nil)
	if doc == nil {
		return nil, false
	}
	doc.Normalize()
	return doc, true
}

// ConfirmFunc asks the user whether to restore a saved session.
type ConfirmFunc func(saved *models.WizardDocument) bool

// Resume offers the saved document for restore. It only asks when the saved
// session had started and this page life has not. Declining leaves the
// saved document in storage.
func (s *SessionContext) Resume(ctx context.Context, startedHere bool, confirm ConfirmFunc) (*models.WizardDocument, bool) {
	if startedHere {
		return nil, false
	}
	saved, ok := s.Saved(ctx)
	if !ok || !saved.HasStarted {
		return nil, false
	}
	if confirm == nil || !confirm(saved) {
		return nil, false
	}
	return saved, true
}

// Clear drops the autosaved document.
func (s *SessionContext) Clear(ctx context.Context) {
	s.Store.RemoveItem(ctx, s.Key())
}

var sessionIDPattern = regexp.MustCompile(`^session_\d+_[0-9a-z]+$`)

// ValidSessionID reports whether id has the minted shape. Only such ids map
// into the autosave key family.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}
