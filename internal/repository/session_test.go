package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/util"
)

func TestPairSessionRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	pairRepo := NewPairRepository(db.DB)
	repo := NewPairSessionRepository(db.DB)
	ctx := context.Background()

	seedPair(t, pairRepo, "PB-40001")

	sess, err := repo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: util.HashToken("token-1"),
		PairCode:  "PB-40001",
		UserName:  "Alex",
		UserSlot:  1,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, "PB-40001", sess.PairCode)
	assert.Equal(t, "Alex", sess.UserName)
	assert.Equal(t, 1, sess.UserSlot)
}

func TestPairSessionRepository_FindByTokenHash(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	pairRepo := NewPairRepository(db.DB)
	repo := NewPairSessionRepository(db.DB)
	ctx := context.Background()

	seedPair(t, pairRepo, "PB-40002")

	hash := util.HashToken("token-2")
	_, err := repo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: hash,
		PairCode:  "PB-40002",
		UserName:  "Alex",
		UserSlot:  1,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("finds live session", func(t *testing.T) {
		sess, err := repo.FindByTokenHash(ctx, hash)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "Alex", sess.UserName)
	})

	t.Run("returns nil for unknown hash", func(t *testing.T) {
		sess, err := repo.FindByTokenHash(ctx, util.HashToken("nope"))
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("does not return expired session", func(t *testing.T) {
		expiredHash := util.HashToken("token-expired")
		_, err := repo.Create(ctx, model.CreatePairSessionParams{
			TokenHash: expiredHash,
			PairCode:  "PB-40002",
			UserName:  "Alex",
			UserSlot:  1,
			ExpiresAt: time.Now().Add(-time.Minute),
		})
		require.NoError(t, err)

		sess, err := repo.FindByTokenHash(ctx, expiredHash)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})
}

func TestPairSessionRepository_DeleteByTokenHash(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	pairRepo := NewPairRepository(db.DB)
	repo := NewPairSessionRepository(db.DB)
	ctx := context.Background()

	seedPair(t, pairRepo, "PB-40003")

	hash := util.HashToken("token-3")
	_, err := repo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: hash,
		PairCode:  "PB-40003",
		UserName:  "Alex",
		UserSlot:  1,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByTokenHash(ctx, hash))

	sess, err := repo.FindByTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestPairSessionRepository_DeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	pairRepo := NewPairRepository(db.DB)
	repo := NewPairSessionRepository(db.DB)
	ctx := context.Background()

	seedPair(t, pairRepo, "PB-40004")

	_, err := repo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: util.HashToken("stale"),
		PairCode:  "PB-40004",
		UserName:  "Alex",
		UserSlot:  1,
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	liveHash := util.HashToken("live")
	_, err = repo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: liveHash,
		PairCode:  "PB-40004",
		UserName:  "Alex",
		UserSlot:  1,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	count, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	sess, err := repo.FindByTokenHash(ctx, liveHash)
	require.NoError(t, err)
	assert.NotNil(t, sess)
}
