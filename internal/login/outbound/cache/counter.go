package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
)

// Counter is a fixed-window attempt counter per (contact, kind).
type Counter struct {
	base
}

func NewCounter(store kv.Store, ins instrument.Instrumentation) *Counter {
	return &Counter{base{store: store, ins: ins}}
}

// Increment bumps the counter and returns the new count. The first increment
// of a window sets its expiry; later ones never extend it.
func (c *Counter) Increment(ctx context.Context, contact string, kind entity.AttemptKind, window time.Duration) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "Counter.Increment")
	defer func() { c.endSpan(span, err) }()

	n, err := c.store.IncrementWithTTL(ctx, keyCounter(kind.KeyPart(), contact), window)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.String("kind", kind.String()), attribute.Int64("count", n))
	return n, nil
}

// Peek reads the current count without changing it; 0 when absent.
func (c *Counter) Peek(ctx context.Context, contact string, kind entity.AttemptKind) (_ int64, err error) {
	ctx, span := c.startSpan(ctx, "Counter.Peek")
	defer func() { c.endSpan(span, err) }()

	raw, err := c.store.Get(ctx, keyCounter(kind.KeyPart(), contact))
	if errors.Is(err, kv.ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(string(raw), 10, 64)
}

// Reset clears the counter, giving the contact a fresh budget.
func (c *Counter) Reset(ctx context.Context, contact string, kind entity.AttemptKind) (err error) {
	ctx, span := c.startSpan(ctx, "Counter.Reset")
	defer func() { c.endSpan(span, err) }()

	return c.store.Delete(ctx, keyCounter(kind.KeyPart(), contact))
}

