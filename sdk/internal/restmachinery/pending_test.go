package restmachinery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPendingRequests(t *testing.T) {
	p := newPendingRequests()
	ctx1, release1 := p.track(context.Background())
	ctx2, release2 := p.track(context.Background())
	defer release1()
	defer release2()
	require.Equal(t, 2, p.count())
	require.NotEqual(t, trackedRequestID(ctx1), trackedRequestID(ctx2))

	require.Equal(t, 1, p.abortAllExcept(trackedRequestID(ctx1)))
	require.NoError(t, ctx1.Err())
	require.ErrorIs(t, ctx2.Err(), context.Canceled)
	require.Equal(t, 1, p.count())

	release1()
	require.ErrorIs(t, ctx1.Err(), context.Canceled)
	require.Zero(t, p.count())
}

func TestTrackedRequestIDUntracked(t *testing.T) {
	require.Zero(t, trackedRequestID(context.Background()))
}
