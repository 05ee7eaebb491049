// Package kvstoretest holds the behaviour every kvstore.Store backend must share.
package kvstoretest

import (
	"context"
	"testing"

	"apin-chat/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the kvstore.Store contract. Keys are prefixed with
// the test name so shared backends can be reused between runs. Values are valid
// JSON since some backends store them in JSON columns.
func Run(t *testing.T, store kvstore.Store) {
	ctx := context.Background()
	key := func(name string) string { return "kvstoretest:" + t.Name() + ":" + name }

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, key("missing"))
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key("blob"), []byte(`{"chats":[]}`)))

		got, err := store.Get(ctx, key("blob"))
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"chats":[]}`), got)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key("over"), []byte(`"one"`)))
		require.NoError(t, store.Set(ctx, key("over"), []byte(`"two"`)))

		got, err := store.Get(ctx, key("over"))
		require.NoError(t, err)
		assert.Equal(t, []byte(`"two"`), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key("gone"), []byte(`"x"`)))
		require.NoError(t, store.Delete(ctx, key("gone")))

		_, err := store.Get(ctx, key("gone"))
		assert.ErrorIs(t, err, kvstore.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, key("never-set")))
	})

	t.Run("values are not aliased", func(t *testing.T) {
		value := []byte(`"abc"`)
		require.NoError(t, store.Set(ctx, key("alias"), value))
		value[1] = 'z'

		got, err := store.Get(ctx, key("alias"))
		require.NoError(t, err)
		assert.Equal(t, []byte(`"abc"`), got)

		got[2] = 'z'
		again, err := store.Get(ctx, key("alias"))
		require.NoError(t, err)
		assert.Equal(t, []byte(`"abc"`), again)
	})
}
