package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/hollow/pkg/logger"
)

func TestNewRejectsMissingConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)

	_, err = New(context.Background(), &Config{Logger: logger.NewNop()})
	require.Error(t, err)
}

func TestPutGetRoundTrip(t *testing.T) {
	idx, err := New(context.Background(), &Config{TypeName: "Movie", Logger: logger.NewNop()})
	require.NoError(t, err)

	require.NoError(t, idx.Put("movie-1", 0))
	require.NoError(t, idx.Put("movie-2", 1))

	ordinal, ok := idx.Get("movie-1")
	require.True(t, ok)
	require.EqualValues(t, 0, ordinal)

	_, ok = idx.Get("missing")
	require.False(t, ok)

	require.Equal(t, 2, idx.Len())
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	idx, err := New(context.Background(), &Config{TypeName: "Movie", Logger: logger.NewNop()})
	require.NoError(t, err)

	require.NoError(t, idx.Put("movie-1", 0))
	require.NoError(t, idx.Put("movie-1", 5))

	ordinal, ok := idx.Get("movie-1")
	require.True(t, ok)
	require.EqualValues(t, 5, ordinal)
	require.Equal(t, 1, idx.Len())
}

func TestCloseRejectsFurtherWrites(t *testing.T) {
	idx, err := New(context.Background(), &Config{TypeName: "Movie", Logger: logger.NewNop()})
	require.NoError(t, err)

	require.NoError(t, idx.Put("movie-1", 0))
	require.NoError(t, idx.Close())

	require.ErrorIs(t, idx.Put("movie-2", 1), ErrIndexClosed)
	require.ErrorIs(t, idx.Close(), ErrIndexClosed)
}
