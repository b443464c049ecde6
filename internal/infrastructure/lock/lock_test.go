package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
)

func TestLocalLocker_SerializaPorClave(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	first, err := l.Obtain(ctx, "export:servicos", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "export:servicos", time.Minute)
	assert.ErrorIs(t, err, exporting.ErrLockHeld)

	other, err := l.Obtain(ctx, "export:prestadores", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	require.NoError(t, first.Release(ctx))

	again, err := l.Obtain(ctx, "export:servicos", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}
