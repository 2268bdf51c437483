package hxbind

import (
	"crypto/rand"
	"errors"

	"github.com/pthm/hxbind/lib/encoding"
)

// stateSnapshot is the round-trippable container state mirrored into the
// hb-state attribute: enough to restore a container's query position without
// re-deriving it from individual filter mirrors.
type stateSnapshot struct {
	Filters map[string]any `msgpack:"f"`
	Page    int            `msgpack:"p"`
	Sort    string         `msgpack:"s,omitempty"`
}

// newStateEncoder builds the token codec. With no configured key a random
// process-local key is drawn, which still round-trips within one run.
func newStateEncoder(opts Options) *encoding.Encoder {
	key := opts.StateKey
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return encoding.NewEncoder(key)
}

// wrapTokenError maps encoding package errors onto hxbind sentinels.
func wrapTokenError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	return err
}
