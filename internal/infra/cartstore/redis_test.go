package cartstore

import (
	"context"
	"testing"
	"time"

	repo "app/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisCartStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCartStore(client), mr
}

func TestRedisCartStore_AddGetRemove(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	n, err := store.Add(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Add(ctx, owner, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := store.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	n, err = store.Remove(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err = store.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	//最後の1個を消すとキーごと消える
	n, err = store.Remove(ctx, owner, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, mr.Exists("cart:user:10"))
}

func TestRedisCartStore_GetMissingKeyReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	ids, err := store.Get(context.Background(), repo.CartOwner{Kind: repo.CartOwnerSession, ID: "nope"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisCartStore_DuplicateAdd(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	_, err := store.Add(ctx, owner, 1)
	require.NoError(t, err)

	_, err = store.Add(ctx, owner, 1)
	assert.ErrorIs(t, err, repo.ErrDuplicateItem)
}

func TestRedisCartStore_RemoveMissingIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	_, err := store.Add(ctx, owner, 1)
	require.NoError(t, err)

	n, err := store.Remove(ctx, owner, 999)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// 書き込みのたびにTTLが7日に張り直される
func TestRedisCartStore_MutationResetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	_, err := store.Add(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, TTL, mr.TTL("cart:user:10"))

	//時間を進めてから追加するとTTLが戻る
	mr.FastForward(24 * time.Hour)
	assert.Equal(t, TTL-24*time.Hour, mr.TTL("cart:user:10"))

	_, err = store.Add(ctx, owner, 2)
	require.NoError(t, err)
	assert.Equal(t, TTL, mr.TTL("cart:user:10"))
}

// 期限が切れたカートは空として見える
func TestRedisCartStore_ExpiredCartIsEmpty(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	owner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}

	_, err := store.Add(ctx, owner, 1)
	require.NoError(t, err)

	mr.FastForward(TTL + time.Second)

	ids, err := store.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// ユーザーのカートとセッションのカートはキーが別
func TestRedisCartStore_OwnersAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	userOwner := repo.CartOwner{Kind: repo.CartOwnerUser, ID: "10"}
	sessOwner := repo.CartOwner{Kind: repo.CartOwnerSession, ID: "10"}

	_, err := store.Add(ctx, userOwner, 1)
	require.NoError(t, err)

	ids, err := store.Get(ctx, sessOwner)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
