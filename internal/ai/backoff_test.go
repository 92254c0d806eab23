package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTimer fires at once and remembers every requested wait.
type recordingTimer struct {
	waits []time.Duration
}

func (r *recordingTimer) After(d time.Duration) <-chan time.Time {
	r.waits = append(r.waits, d)
	c := make(chan time.Time, 1)
	c <- time.Now()
	return c
}

// stalledTimer never fires.
type stalledTimer struct{}

func (stalledTimer) After(time.Duration) <-chan time.Time { return nil }

func testBackoff(r *recordingTimer) Backoff {
	b := DefaultBackoff(discardLogger())
	b.Timer = r
	return b
}

func TestBackoffRateLimitedThreeTimes(t *testing.T) {
	timer := &recordingTimer{}
	calls := 0

	_, err := testBackoff(timer).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "never issues a 4th attempt")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.waits)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 3, rl.Attempts)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "wait 30 seconds")
}

func TestBackoffRecoversAfterRateLimit(t *testing.T) {
	timer := &recordingTimer{}
	calls := 0

	out, err := testBackoff(timer).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("status 429 Too Many Requests")
		}
		return `{"ok":true}`, nil
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{time.Second}, timer.waits)
}

func TestBackoffOtherErrorsAbortImmediately(t *testing.T) {
	timer := &recordingTimer{}
	calls := 0
	boom := errors.New("invalid argument")

	_, err := testBackoff(timer).Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.waits)
}

func TestBackoffStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := DefaultBackoff(discardLogger())
	b.Timer = stalledTimer{}
	calls := 0
	_, err := b.Do(ctx, func(context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("429")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, calls)
}

func TestBackoffSkipsCallOnDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := testBackoff(&recordingTimer{}).Do(ctx, func(context.Context) (string, error) {
		calls++
		return "", nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
