package repository

import (
	"context"
	"testing"

	"SteamGems/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCreateThenUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()
	userID := uint64(7)

	games := []model.OwnedGameEntry{
		{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(3456), RtimeLastPlayed: int64Ptr(1700000000)},
		{AppID: int64Ptr(570), PlaytimeForever: int64Ptr(120)},
	}

	result, err := repo.Reconcile(ctx, userID, games)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.TotalIncoming)

	// 同一(user, app)再次同步：就地更新，行数不变，playtime精确覆盖
	games[0].PlaytimeForever = int64Ptr(4000)
	result, err = repo.Reconcile(ctx, userID, games)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Updated)
	assert.EqualValues(t, 2, count(t, db, &model.OwnedGame{}))

	var row model.OwnedGame
	require.NoError(t, db.Where("user_id = ? AND steam_appid = ?", userID, 620).First(&row).Error)
	assert.EqualValues(t, 4000, row.PlaytimeForever)
}

func TestReconcileSkipsEntriesWithoutAppID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	games := []model.OwnedGameEntry{
		{Name: "ghost entry"}, // 缺appid：跳过但计入total
		{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(10)},
	}

	result, err := repo.Reconcile(ctx, 7, games)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.TotalIncoming)
	assert.EqualValues(t, 1, count(t, db, &model.OwnedGame{}))
}

func TestReconcileCreatesPlaceholderApp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	_, err := repo.Reconcile(ctx, 7, []model.OwnedGameEntry{
		{AppID: int64Ptr(99999), PlaytimeForever: int64Ptr(60)},
	})
	require.NoError(t, err)

	// 无元数据抓取的前提下FK父行成立：占位App只有appid
	var app model.App
	require.NoError(t, db.Where("steam_appid = ?", 99999).First(&app).Error)
	assert.Empty(t, app.Name)
	assert.Nil(t, app.MetacriticScore)
}

func TestReconcileNeverOverwritesAppMetadata(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.App{SteamAppID: 570, Name: "Dota 2", Positive: 100}).Error)

	_, err := repo.Reconcile(ctx, 7, []model.OwnedGameEntry{
		{AppID: int64Ptr(570), PlaytimeForever: int64Ptr(9000)},
	})
	require.NoError(t, err)

	var app model.App
	require.NoError(t, db.Where("steam_appid = ?", 570).First(&app).Error)
	assert.Equal(t, "Dota 2", app.Name, "持仓同步不得触碰已有App元数据")
	assert.Equal(t, 100, app.Positive)
}

func TestReconcileMissingFieldsDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	// playtime缺失兜底0，last_played缺失置null
	_, err := repo.Reconcile(ctx, 7, []model.OwnedGameEntry{{AppID: int64Ptr(620)}})
	require.NoError(t, err)

	var row model.OwnedGame
	require.NoError(t, db.Where("user_id = ? AND steam_appid = ?", 7, 620).First(&row).Error)
	assert.EqualValues(t, 0, row.PlaytimeForever)
	assert.Nil(t, row.RtimeLastPlayed)

	// 后续同步带上字段：无条件覆盖
	_, err = repo.Reconcile(ctx, 7, []model.OwnedGameEntry{
		{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(55), RtimeLastPlayed: int64Ptr(1710000000)},
	})
	require.NoError(t, err)
	require.NoError(t, db.Where("user_id = ? AND steam_appid = ?", 7, 620).First(&row).Error)
	assert.EqualValues(t, 55, row.PlaytimeForever)
	require.NotNil(t, row.RtimeLastPlayed)
	assert.EqualValues(t, 1710000000, *row.RtimeLastPlayed)
}

func TestReconcileDuplicateAppIDInBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	// 同批出现重复appid：第一条建行，第二条走更新（最后写入者生效）
	result, err := repo.Reconcile(ctx, 7, []model.OwnedGameEntry{
		{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(10)},
		{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(20)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.EqualValues(t, 1, count(t, db, &model.OwnedGame{}))

	var row model.OwnedGame
	require.NoError(t, db.Where("user_id = ? AND steam_appid = ?", 7, 620).First(&row).Error)
	assert.EqualValues(t, 20, row.PlaytimeForever)
}

func TestReconcileIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnedGameRepository(db)
	ctx := context.Background()

	_, err := repo.Reconcile(ctx, 1, []model.OwnedGameEntry{{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(10)}})
	require.NoError(t, err)
	result, err := repo.Reconcile(ctx, 2, []model.OwnedGameEntry{{AppID: int64Ptr(620), PlaytimeForever: int64Ptr(30)}})
	require.NoError(t, err)

	// 不同用户同一应用互不影响，各自一行
	assert.Equal(t, 1, result.Created)
	assert.EqualValues(t, 2, count(t, db, &model.OwnedGame{}))

	rows, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 10, rows[0].PlaytimeForever)
}
