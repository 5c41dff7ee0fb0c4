package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewKVStore(client), s
}

func TestKVStore_SetAndGet(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	// Get before set => nil, nil
	result, err := kv.Get(ctx, "fields_example.com")
	assert.NoError(t, err)
	assert.Nil(t, result)

	value := []byte(`[{"friendly_name":"Price Drop"}]`)
	require.NoError(t, kv.Set(ctx, "fields_example.com", value))

	result, err = kv.Get(ctx, "fields_example.com")
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestKVStore_NoExpiry(t *testing.T) {
	kv, s := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "fieldPresets", []byte(`{}`)))
	assert.Equal(t, time.Duration(0), s.TTL("fieldPresets"), "configuration keys must not expire")
}

func TestKVStore_Overwrite(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "fields_example.com", []byte("first")))
	require.NoError(t, kv.Set(ctx, "fields_example.com", []byte("second")))

	result, err := kv.Get(ctx, "fields_example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), result)
}

func TestKVStore_Delete(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "fields_example.com", []byte("data")))
	require.NoError(t, kv.Delete(ctx, "fields_example.com"))
	require.NoError(t, kv.Delete(ctx, "fields_example.com"), "deleting an absent key is not an error")

	result, err := kv.Get(ctx, "fields_example.com")
	require.NoError(t, err)
	assert.Nil(t, result)
}
