package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("storage: key not found")
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Store is the key/value surface the wizard persists into. Values are JSON
// documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

const (
	// SessionKeyPrefix marks autosaved wizard documents. Session ids start
	// with "session_", so every autosave key starts with this prefix.
	SessionKeyPrefix = "wizard_session_"
	// PaymentDataKey holds the snapshot taken at checkout handoff.
	PaymentDataKey = "wizard_payment_data"
)

// SessionKey is the autosave key for a session id.
func SessionKey(sessionID string) string {
	return "wizard_" + sessionID
}

func IsSessionKey(key string) bool {
	return strings.HasPrefix(key, SessionKeyPrefix)
}

const nsPrefix = "ns:"

type namespaced struct {
	inner  Store
	prefix string
}

// Namespace scopes every key of inner under ns, giving each client its own
// view of a shared store.
func Namespace(inner Store, ns string) Store {
	return &namespaced{inner: inner, prefix: nsPrefix + ns + "/"}
}

// namespaceOf returns the namespace prefix of a namespaced key, or "".
func namespaceOf(key string) string {
	if !strings.HasPrefix(key, nsPrefix) {
		return ""
	}
	i := strings.IndexByte(key, '/')
	if i < 0 {
		return ""
	}
	return key[:i+1]
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}

func (n *namespaced) Keys(ctx context.Context) ([]string, error) {
	all, err := n.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range all {
		if strings.HasPrefix(k, n.prefix) {
			keys = append(keys, strings.TrimPrefix(k, n.prefix))
		}
	}
	return keys, nil
}
