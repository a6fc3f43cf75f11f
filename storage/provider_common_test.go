package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProviderGenericAll runs the behaviors every Provider must have. Keys are made unique with keySuffix
// so that shared backends can be reused between runs.
func testProviderGenericAll(t *testing.T, p Provider, keySuffix string) {
	ctx := context.Background()
	key := func(k string) string { return k + keySuffix }

	t.Run("missing key", func(t *testing.T) {
		data, err := p.Get(ctx, key("never-saved"))
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("save and get", func(t *testing.T) {
		require.NoError(t, p.Save(ctx, key(KeySessionID), []byte(`"123"`)))
		data, err := p.Get(ctx, key(KeySessionID))
		require.NoError(t, err)
		assert.Equal(t, `"123"`, string(data))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, p.Save(ctx, key(KeyRepo), []byte(`[]`)))
		require.NoError(t, p.Save(ctx, key(KeyRepo), []byte(`[{"name":"a"}]`)))
		data, err := p.Get(ctx, key(KeyRepo))
		require.NoError(t, err)
		assert.Equal(t, `[{"name":"a"}]`, string(data))
	})

	t.Run("JSON helpers", func(t *testing.T) {
		type record struct {
			Key       string `json:"key"`
			Timestamp int64  `json:"timestamp"`
		}
		require.NoError(t, SaveJSON(ctx, p, key(KeyLastUpdate), record{Key: "abc", Timestamp: 1000}))
		var r record
		found, err := GetJSON(ctx, p, key(KeyLastUpdate), &r)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, record{Key: "abc", Timestamp: 1000}, r)

		found, err = GetJSON(ctx, p, key("absent"), &r)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, p.Save(ctx, key("concurrent"), []byte(`"x"`)))
			}()
		}
		wg.Wait()
		data, err := p.Get(ctx, key("concurrent"))
		require.NoError(t, err)
		assert.Equal(t, `"x"`, string(data))
	})
}
