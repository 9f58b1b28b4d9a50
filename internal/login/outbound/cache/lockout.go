package cache

import (
	"context"
	"errors"
	"time"

	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

var lockedValue = []byte("1")

// Lockout blocks every request and verify of a contact until its key expires.
// There is no unlock.
type Lockout struct {
	base
}

func NewLockout(store kv.Store, ins instrument.Instrumentation) *Lockout {
	return &Lockout{base{store: store, ins: ins}}
}

func (l *Lockout) IsLockedOut(ctx context.Context, contact string) (_ bool, err error) {
	ctx, span := l.startSpan(ctx, "Lockout.IsLockedOut")
	defer func() { l.endSpan(span, err) }()

	_, err = l.store.Get(ctx, keyLock(contact))
	if errors.Is(err, kv.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Lock overwrites any lockout in place with a new one lasting d.
func (l *Lockout) Lock(ctx context.Context, contact string, d time.Duration) (err error) {
	ctx, span := l.startSpan(ctx, "Lockout.Lock")
	defer func() { l.endSpan(span, err) }()

	return l.store.SetWithTTL(ctx, keyLock(contact), lockedValue, d)
}

// LockedFor reports how long the lockout has left, zero when not locked.
func (l *Lockout) LockedFor(ctx context.Context, contact string) (_ time.Duration, err error) {
	ctx, span := l.startSpan(ctx, "Lockout.LockedFor")
	defer func() { l.endSpan(span, err) }()

	return l.store.TTL(ctx, keyLock(contact))
}
