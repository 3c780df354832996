package promise_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/clikernel/framework/promise"
)

func await(t *testing.T, p *promise.Promise) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Await(ctx)
}

func TestNew_Fulfills(t *testing.T) {
	t.Parallel()

	v, err := await(t, promise.New(func() (any, error) { return 42, nil }))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestNew_PanicBecomesRejection(t *testing.T) {
	t.Parallel()

	_, err := await(t, promise.New(func() (any, error) { panic("boom") }))

	var pe *promise.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
}

func TestResolve_AdoptsInnerPromise(t *testing.T) {
	t.Parallel()

	inner := promise.New(func() (any, error) { return "inner", nil })
	v, err := await(t, promise.Resolve(inner))
	require.NoError(t, err)
	assert.Equal(t, "inner", v)
}

func TestThen_SkippedOnRejection(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	called := false
	p := promise.Reject(boom).Then(func(v any) (any, error) {
		called = true
		return v, nil
	})

	_, err := await(t, p)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestCatch_RecoversRejection(t *testing.T) {
	t.Parallel()

	p := promise.Reject(errors.New("boom")).Catch(func(err error) (any, error) {
		return "recovered: " + err.Error(), nil
	})

	v, err := await(t, p)
	require.NoError(t, err)
	assert.Equal(t, "recovered: boom", v)
}

func TestFinally_PassesOutcomeThrough(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{})
	boom := errors.New("boom")
	p := promise.Reject(boom).Finally(func() { close(ran) })

	_, err := await(t, p)
	assert.ErrorIs(t, err, boom)
	<-ran
}

func TestAwait_ContextDone(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	defer close(block)
	p := promise.New(func() (any, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, p.Settled())
}

func TestAll_RejectionDoesNotCancelOthers(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	slow := promise.New(func() (any, error) {
		time.Sleep(10 * time.Millisecond)
		return "slow", nil
	})
	failed := promise.Reject(boom)

	_, err := await(t, promise.All(failed, slow))
	assert.ErrorIs(t, err, boom)

	v, err := await(t, slow)
	require.NoError(t, err)
	assert.Equal(t, "slow", v)
}
