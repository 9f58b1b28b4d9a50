package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
)

type challengeRecord struct {
	Contact    string    `json:"contact"`
	Channel    string    `json:"channel"`
	CodeDigest string    `json:"code_digest"`
	IssuedAt   time.Time `json:"issued_at"`
}

// ChallengeStore keeps one challenge per contact; Put replaces the previous one.
type ChallengeStore struct {
	base
}

func NewChallengeStore(store kv.Store, ins instrument.Instrumentation) *ChallengeStore {
	return &ChallengeStore{base{store: store, ins: ins}}
}

func (c *ChallengeStore) Put(ctx context.Context, ch entity.Challenge, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "ChallengeStore.Put")
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(challengeRecord{
		Contact:    ch.Contact,
		Channel:    ch.Channel.String(),
		CodeDigest: ch.CodeDigest,
		IssuedAt:   ch.IssuedAt,
	})
	if err != nil {
		return err
	}

	return c.store.SetWithTTL(ctx, keyChallenge(ch.Contact), body, ttl)
}

// Consume hands the live challenge of contact to match and, when match
// accepts it, removes exactly that record. It returns goerror.ErrNotFound when
// there is no challenge or another call consumed or replaced it in between,
// and entity.ErrCodeMismatch when match rejects it; a rejected challenge stays.
func (c *ChallengeStore) Consume(ctx context.Context, contact string, match func(entity.Challenge) bool) (_ *entity.Challenge, err error) {
	ctx, span := c.startSpan(ctx, "ChallengeStore.Consume")
	defer func() { c.endSpan(span, err) }()

	key := keyChallenge(contact)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, c.mapError(err)
	}

	var rec challengeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	ch := entity.Challenge{
		Contact:    rec.Contact,
		Channel:    entity.ParseChannel(rec.Channel),
		CodeDigest: rec.CodeDigest,
		IssuedAt:   rec.IssuedAt,
	}

	if !match(ch) {
		return nil, entity.ErrCodeMismatch
	}

	// compare-and-delete on the bytes read above: a concurrent winner or a
	// newer Put makes this a miss instead of a second use.
	deleted, err := c.store.DeleteIfValue(ctx, key, raw)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, goerror.ErrNotFound
	}

	return &ch, nil
}
