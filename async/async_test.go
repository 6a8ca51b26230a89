package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallReturnsData(t *testing.T) {
	c := Go(context.Background(), func(context.Context) (int, error) { return 42, nil })

	res := c.Wait(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Data)
	assert.False(t, c.Pending())
}

func TestCallReturnsError(t *testing.T) {
	boom := errors.New("boom")
	c := Go(context.Background(), func(context.Context) (string, error) { return "", boom })

	<-c.Done()
	assert.ErrorIs(t, c.Wait(context.Background()).Err, boom)
}

func TestPendingUntilFinished(t *testing.T) {
	release := make(chan struct{})
	c := Go(context.Background(), func(context.Context) (bool, error) {
		<-release
		return true, nil
	})

	assert.True(t, c.Pending())
	close(release)
	res := c.Wait(context.Background())
	assert.True(t, res.Data)
	assert.False(t, c.Pending())
}

func TestCancelPropagatesToCall(t *testing.T) {
	c := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	c.Cancel()
	c.Cancel()
	res := c.Wait(context.Background())
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestIndependentCallsDoNotShareState(t *testing.T) {
	failing := Go(context.Background(), func(context.Context) (int, error) { return 0, errors.New("summary failed") })
	ok := Go(context.Background(), func(context.Context) (int, error) { return 7, nil })

	assert.Error(t, failing.Wait(context.Background()).Err)
	res := ok.Wait(context.Background())
	assert.NoError(t, res.Err)
	assert.Equal(t, 7, res.Data)
}

func TestWaitHonoursCallerContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := c.Wait(ctx)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.True(t, c.Pending())
}
