package cache

import (
	"context"
	"errors"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Keys are namespaced per record kind and per contact, so two contacts never
// touch the same key.
func keyChallenge(contact string) string { return "login:code:" + contact }
func keyLock(contact string) string      { return "login:lock:" + contact }
func keyCounter(part, contact string) string {
	return "login:" + part + ":count:" + contact
}

type base struct {
	store kv.Store
	ins   instrument.Instrumentation
}

func (b base) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kv.ErrMiss) {
		return goerror.ErrNotFound
	}

	return err
}

func (b base) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return b.ins.Tracer("login.outbound.cache").Start(ctx, name)
}

func (b base) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, entity.ErrCodeMismatch) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
