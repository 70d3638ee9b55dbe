package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/repository"
)

func TestFavorites_SetSemantics(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewInteractionRepository(gdb)
	createUser(t, gdb, "u1")
	createUser(t, gdb, "u2")
	a := createAd(t, gdb, "u2", 100, 1)

	has, err := repo.HasFavorite(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.AddFavorite(ctx, "u1", a.ID))
	require.NoError(t, repo.AddFavorite(ctx, "u1", a.ID))
	require.NoError(t, repo.AddFavorite(ctx, "u2", a.ID))

	count, err := repo.CountFavorites(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	has, err = repo.HasFavorite(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := repo.RemoveFavorite(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveFavorite(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	count, err = repo.CountFavorites(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFlags_DuplicateIsRejected(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewInteractionRepository(gdb)
	createUser(t, gdb, "u1")
	createUser(t, gdb, "u2")
	a := createAd(t, gdb, "u1", 100, 1)

	require.NoError(t, repo.AddFlag(ctx, "u2", a.ID, "spam"))
	err := repo.AddFlag(ctx, "u2", a.ID, "again")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	has, err := repo.HasFlag(ctx, "u2", a.ID)
	require.NoError(t, err)
	assert.True(t, has)

	// the first flag is older, so it lists first regardless of user id
	older := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, gdb.Model(&db.AdFlag{}).Where("user_id = ? AND ad_id = ?", "u2", a.ID).Update("created_at", older).Error)

	require.NoError(t, repo.AddFlag(ctx, "u1", a.ID, ""))
	flags, err := repo.ListFlaggers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "u2", flags[0].UserID)
	assert.Equal(t, "spam", flags[0].Reason)
	assert.Equal(t, "u1", flags[1].UserID)
}

func TestListFlaggers_SameInstantOrdersByUser(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewInteractionRepository(gdb)
	for _, id := range []string{"u1", "u2", "u3"} {
		createUser(t, gdb, id)
	}
	a := createAd(t, gdb, "u1", 100, 1)

	at := time.Now().UTC().Truncate(time.Millisecond)
	for _, id := range []string{"u3", "u1", "u2"} {
		require.NoError(t, gdb.Create(&db.AdFlag{UserID: id, AdID: a.ID, CreatedAt: at}).Error)
	}

	flags, err := repo.ListFlaggers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, flags, 3)
	assert.Equal(t, []string{"u1", "u2", "u3"}, []string{flags[0].UserID, flags[1].UserID, flags[2].UserID})
}

func TestInsertView_DedupesPerViewer(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewInteractionRepository(gdb)
	createUser(t, gdb, "u1")
	a := createAd(t, gdb, "u1", 100, 1)

	inserted, err := repo.InsertView(ctx, a.ID, ptr("u1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertView(ctx, a.ID, ptr("u1"))
	require.NoError(t, err)
	assert.False(t, inserted)

	// anonymous views are never deduplicated
	for i := 0; i < 2; i++ {
		inserted, err = repo.InsertView(ctx, a.ID, nil)
		require.NoError(t, err)
		assert.True(t, inserted)
	}
}
