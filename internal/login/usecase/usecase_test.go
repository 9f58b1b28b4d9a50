package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/login/outbound/cache"
	kv "github.com/shandysiswandi/otpgate/internal/pkg/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/shared/passcode"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

// codeSeq hands out the listed codes in order, then repeats the last one.
type codeSeq struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (g *codeSeq) Generate(int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := g.codes[min(g.next, len(g.codes)-1)]
	g.next++
	return code, nil
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Send(ctx context.Context, n entity.Notice) error {
	return m.Called(ctx, n).Error(0)
}

func (m *notifierMock) notices() []entity.Notice {
	out := make([]entity.Notice, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(1).(entity.Notice))
	}
	return out
}

type fixture struct {
	uc       *Usecase
	mr       *miniredis.Miniredis
	store    kv.Store
	notifier *notifierMock
	tokens   *jwt.Symmetric
	clock    *clock.Fixed
}

func newFixture(t *testing.T, yaml string, codes ...string) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := kv.NewRedis(client, "")

	if yaml == "" {
		yaml = "modules:\n  login:\n    enabled: true\n"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	hmac, err := hash.NewHMACSHA256("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	msg, err := passcode.NewMessage("")
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	tokens, err := jwt.NewHS512(jwt.Config{
		Secret: bytes.Repeat([]byte("k"), 64),
		Issuer: "otpgate",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.Static("jti-1"),
	})
	require.NoError(t, err)

	if len(codes) == 0 {
		codes = []string{"AB3F9K"}
	}

	notifier := new(notifierMock)
	ins := instrument.NewNoop()

	uc := New(Dependency{
		Counter:     cache.NewCounter(store, ins),
		Lockout:     cache.NewLockout(store, ins),
		Challenges:  cache.NewChallengeStore(store, ins),
		Notifier:    notifier,
		TokenIssuer: tokens,
		Validator:   v,
		Config:      cfg,
		HMAC:        hmac,
		OTP:         &codeSeq{codes: codes},
		Message:     msg,
		Clock:       clk,
		Instrument:  ins,
	})

	return &fixture{uc: uc, mr: mr, store: store, notifier: notifier, tokens: tokens, clock: clk}
}

// slowReads widens the gap between reading a record and acting on it. When
// read is set it is signalled right after each read.
type slowReads struct {
	kv.Store
	delay time.Duration
	read  chan struct{}
}

func (s slowReads) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.Store.Get(ctx, key)
	if s.read != nil {
		s.read <- struct{}{}
	}
	time.Sleep(s.delay)
	return v, err
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	require.Error(t, err)
	require.Truef(t, goerror.Is(err, code), "want %s, got %v", code, err)
}

func retryAfter(t *testing.T, err error) time.Duration {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	return gerr.RetryAfter()
}
