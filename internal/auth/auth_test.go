package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int32
	token func(call int32) (Token, error)
}

func (f *fakeSource) Token(ctx context.Context) (Token, error) {
	call := atomic.AddInt32(&f.calls, 1)
	return f.token(call)
}

func TestStart_FailsIfInitialAcquisitionFails(t *testing.T) {
	src := &fakeSource{token: func(int32) (Token, error) { return Token{}, errors.New("denied") }}
	g := New(src, time.Hour)

	err := g.Start(context.Background())
	assert.Error(t, err)
}

func TestStart_CachesInitialTokenSynchronously(t *testing.T) {
	want := Token{Value: "abc", ExpiresOn: time.Now().Add(time.Hour)}
	src := &fakeSource{token: func(int32) (Token, error) { return want, nil }}
	g := New(src, time.Hour)

	require.NoError(t, g.Start(context.Background()))
	defer g.Stop()

	assert.True(t, g.Valid())
	got, err := g.Current()
	require.NoError(t, err)
	assert.Equal(t, want.Value, got.Value)
}

func TestCurrent_ReturnsErrExpiredPastExpiry(t *testing.T) {
	expired := Token{Value: "abc", ExpiresOn: time.Now().Add(-time.Minute)}
	src := &fakeSource{token: func(int32) (Token, error) { return expired, nil }}
	g := New(src, time.Hour)

	require.NoError(t, g.Start(context.Background()))
	defer g.Stop()

	_, err := g.Current()
	assert.ErrorIs(t, err, ErrExpired)
	assert.False(t, g.Valid())
}

func TestForceRefresh_ReacquiresImmediately(t *testing.T) {
	src := &fakeSource{token: func(call int32) (Token, error) {
		if call == 1 {
			return Token{Value: "first", ExpiresOn: time.Now().Add(time.Hour)}, nil
		}
		return Token{Value: "second", ExpiresOn: time.Now().Add(time.Hour)}, nil
	}}
	g := New(src, time.Hour)
	require.NoError(t, g.Start(context.Background()))
	defer g.Stop()

	tok, err := g.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok.Value)
}

func TestBackgroundLoop_EmitsEventsOnEachTick(t *testing.T) {
	src := &fakeSource{token: func(int32) (Token, error) {
		return Token{Value: "x", ExpiresOn: time.Now().Add(time.Hour)}, nil
	}}
	g := New(src, 20*time.Millisecond)
	require.NoError(t, g.Start(context.Background()))
	defer g.Stop()

	select {
	case ev := <-g.Events():
		assert.True(t, ev.OK)
	case <-time.After(time.Second):
		t.Fatal("expected a background revalidation event")
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	src := &fakeSource{token: func(int32) (Token, error) { return Token{ExpiresOn: time.Now().Add(time.Hour)}, nil }}
	g := New(src, time.Hour)
	require.NoError(t, g.Start(context.Background()))

	assert.NotPanics(t, func() {
		g.Stop()
		g.Stop()
	})
}

func TestValid_FalseBeforeStart(t *testing.T) {
	src := &fakeSource{token: func(int32) (Token, error) { return Token{}, nil }}
	g := New(src, time.Hour)
	assert.False(t, g.Valid())
}
