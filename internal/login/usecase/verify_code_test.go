package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/login/entity"
	"github.com/shandysiswandi/otpgate/internal/login/outbound/cache"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUsecase_VerifyCode(t *testing.T) {
	ctx := context.Background()

	request := func(t *testing.T, f *fixture, contact string, ch entity.Channel) {
		t.Helper()
		require.NoError(t, f.uc.RequestCode(ctx, RequestCodeInput{Contact: contact, Channel: ch}))
	}

	t.Run("case-insensitive match issues token once", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "ab3f9k"})
		_, again := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "ab3f9k"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, phone, out.Identity)
		assert.Equal(t, entity.ChannelPhone, out.Channel)
		assert.NotEmpty(t, out.Token)
		assert.Equal(t, testNow.Add(time.Hour), out.ExpiresAt)

		clm, err := f.tokens.Verify(out.Token)
		require.NoError(t, err)
		assert.Equal(t, phone, clm.Subject)
		assert.Equal(t, "phone", clm.Channel)

		requireCode(t, again, goerror.CodeNotFound)
		assert.False(t, f.mr.Exists("login:code:"+phone))
	})

	t.Run("success resets verify budget", func(t *testing.T) {
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, "a@b.co", entity.ChannelEmail)
		_, _ = f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: "a@b.co", Code: "ZZZZZZ"})
		require.True(t, f.mr.Exists("login:verify:count:a@b.co"))

		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: "A@B.CO", Code: "AB3F9K"})

		require.NoError(t, err)
		assert.Equal(t, "a@b.co", out.Identity)
		assert.Equal(t, entity.ChannelEmail, out.Channel)
		assert.False(t, f.mr.Exists("login:verify:count:a@b.co"))
	})

	t.Run("new request invalidates previous code", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "FIRST2", "SECND3")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)
		request(t, f, phone, entity.ChannelPhone)

		// Act
		_, errOld := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "FIRST2"})
		out, errNew := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "SECND3"})

		// Assert
		requireCode(t, errOld, goerror.CodeUnauthorized)
		require.NoError(t, errNew)
		assert.Equal(t, phone, out.Identity)
	})

	t.Run("expired challenge is not found", func(t *testing.T) {
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)

		f.mr.FastForward(5 * time.Minute)
		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})

		requireCode(t, err, goerror.CodeNotFound)
	})

	t.Run("never requested is not found", func(t *testing.T) {
		f := newFixture(t, "")

		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})

		requireCode(t, err, goerror.CodeNotFound)
	})

	t.Run("wrong codes lock out even the right one", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)

		// Act
		var errs []error
		for range 6 {
			_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "WRONG2"})
			errs = append(errs, err)
		}
		_, locked := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})
		_, stillLocked := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})
		requestErr := f.uc.RequestCode(ctx, RequestCodeInput{Contact: phone, Channel: entity.ChannelPhone})

		// Assert
		for _, err := range errs {
			requireCode(t, err, goerror.CodeUnauthorized)
		}
		requireCode(t, locked, goerror.CodeTooManyRequest)
		assert.Equal(t, 15*time.Minute, retryAfter(t, locked))
		requireCode(t, stillLocked, goerror.CodeTooManyRequest)
		requireCode(t, requestErr, goerror.CodeTooManyRequest)

		count, err := f.mr.Get("login:verify:count:" + phone)
		require.NoError(t, err)
		assert.Equal(t, "7", count)
		assert.True(t, f.mr.Exists("login:code:"+phone))
	})

	t.Run("invalid input is not counted", func(t *testing.T) {
		tests := []struct {
			name  string
			in    VerifyCodeInput
			field string
		}{
			{name: "empty contact", in: VerifyCodeInput{Code: "AB3F9K"}, field: "contact"},
			{name: "blank code", in: VerifyCodeInput{Contact: phone, Code: "   "}, field: "code"},
			{name: "malformed contact", in: VerifyCodeInput{Contact: "12", Code: "AB3F9K"}, field: "contact"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, "")

				_, err := f.uc.VerifyCode(ctx, tt.in)

				requireCode(t, err, goerror.CodeInvalidInput)
				assert.Contains(t, fieldsOf(err), tt.field)
				assert.Empty(t, f.mr.Keys())
			})
		}
	})

	t.Run("code outside the alphabet is a wrong code", func(t *testing.T) {
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)

		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB-3F9"})

		requireCode(t, err, goerror.CodeUnauthorized)
		count, getErr := f.mr.Get("login:verify:count:" + phone)
		require.NoError(t, getErr)
		assert.Equal(t, "1", count)
	})

	t.Run("configured code length verifies", func(t *testing.T) {
		for _, length := range []int{3, 16} {
			t.Run(strconv.Itoa(length), func(t *testing.T) {
				// Arrange
				f := newFixture(t, fmt.Sprintf("modules:\n  login:\n    code_length: %d\n", length))
				gen, err := otp.NewAlphabet("")
				require.NoError(t, err)
				f.uc.otp = gen
				f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
				request(t, f, phone, entity.ChannelPhone)
				code := f.notifier.notices()[0].Code

				// Act
				out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: code})

				// Assert
				require.NoError(t, err)
				assert.Len(t, code, length)
				assert.Equal(t, phone, out.Identity)
			})
		}
	})

	t.Run("concurrent verifies of one code issue one token", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)
		f.uc.challenges = cache.NewChallengeStore(slowReads{Store: f.store, delay: 50 * time.Millisecond}, instrument.NewNoop())
		const callers = 5
		var wg sync.WaitGroup
		errs := make(chan error, callers)

		// Act
		for range callers {
			wg.Go(func() {
				_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})
				errs <- err
			})
		}
		wg.Wait()
		close(errs)

		// Assert
		tokens := 0
		for err := range errs {
			if err == nil {
				tokens++
				continue
			}
			requireCode(t, err, goerror.CodeNotFound)
		}
		assert.Equal(t, 1, tokens)
		assert.False(t, f.mr.Exists("login:code:"+phone))
	})

	t.Run("code requested during a verify survives it", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "AB3F9K", "NEW7PQ")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)
		read := make(chan struct{}, 4)
		f.uc.challenges = cache.NewChallengeStore(slowReads{Store: f.store, delay: 50 * time.Millisecond, read: read}, instrument.NewNoop())
		done := make(chan error, 1)

		// Act
		go func() {
			_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})
			done <- err
		}()
		<-read
		request(t, f, phone, entity.ChannelPhone)
		staleErr := <-done
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "NEW7PQ"})

		// Assert
		requireCode(t, staleErr, goerror.CodeNotFound)
		require.NoError(t, err)
		assert.Equal(t, phone, out.Identity)
	})

	t.Run("spent deadline is a timeout", func(t *testing.T) {
		f := newFixture(t, "")
		expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()

		_, err := f.uc.VerifyCode(expired, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})

		requireCode(t, err, goerror.CodeTimeout)
	})

	t.Run("issuer failure is unavailable and code is spent", func(t *testing.T) {
		f := newFixture(t, "", "AB3F9K")
		f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
		request(t, f, phone, entity.ChannelPhone)
		f.uc.tokens = failingIssuer{}

		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Contact: phone, Code: "AB3F9K"})

		requireCode(t, err, goerror.CodeUnavailable)
		assert.False(t, f.mr.Exists("login:code:"+phone))
	})
}

func fieldsOf(err error) map[string]string {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		return nil
	}

	var values interface{ Values() map[string]string }
	if errors.As(err, &values) {
		return values.Values()
	}

	return gerr.Fields()
}
