package kvstore

import (
	"context"
	"testing"

	"atelier-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s domain.CartStorage) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "cart-1", []byte(`[{"id":"p1"}]`)))
	data, found, err := s.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(data))

	require.NoError(t, s.Set(ctx, "cart-1", []byte(`[]`)))
	data, _, err = s.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, s.Delete(ctx, "cart-1"))
	_, found, err = s.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemory()
	buf := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[0] = 'z'

	data, _, _ := s.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, 1, s.Len())
}

func TestFileStore(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", ".hidden", ".."} {
		err := s.Set(context.Background(), key, []byte("x"))
		assert.Error(t, err, key)
	}
}
