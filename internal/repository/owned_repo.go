package repository

import (
	"context"
	"fmt"

	"SteamGems/internal/model"

	"gorm.io/gorm"
)

// OwnedGameRepository 拥有游戏仓储接口
type OwnedGameRepository interface {
	// Reconcile 批量对账：一次预取该用户全部持仓，逐条insert-or-update，单次提交
	Reconcile(ctx context.Context, userID uint64, games []model.OwnedGameEntry) (*model.OwnedSyncResult, error)
	// ListByUser 某用户全部拥有游戏行
	ListByUser(ctx context.Context, userID uint64) ([]*model.OwnedGame, error)
}

type ownedGameRepository struct {
	db *gorm.DB
}

// NewOwnedGameRepository 创建OwnedGameRepository实例
func NewOwnedGameRepository(db *gorm.DB) OwnedGameRepository {
	return &ownedGameRepository{db: db}
}

// Reconcile 入库规则：
//   - 预取该用户全部OwnedGame行到map，循环内O(1)查找，免去逐行存在性查询
//   - 入参缺appid的记录跳过（计入total_incoming，不计created/updated）
//   - App父行不存在时建占位行（仅appid），保证外键成立且不触发元数据抓取
//   - playtime/last_played无条件覆盖（last-write-wins），缺失分别兜底为0/null
//   - 整批单事务提交，中途失败全部回滚
func (r *ownedGameRepository) Reconcile(ctx context.Context, userID uint64, games []model.OwnedGameEntry) (*model.OwnedSyncResult, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	var rows []*model.OwnedGame
	if err := tx.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("预取OwnedGame失败: %w, user_id: %d", err, userID)
	}
	existing := make(map[int64]*model.OwnedGame, len(rows))
	for _, row := range rows {
		existing[row.SteamAppID] = row
	}

	result := &model.OwnedSyncResult{TotalIncoming: len(games)}
	for _, g := range games {
		if g.AppID == nil {
			continue // 畸形入参，跳过但计入total
		}
		appid := *g.AppID

		// FK父行兜底：占位App只有appid，绝不覆盖已有元数据
		var count int64
		if err := tx.Model(&model.App{}).Where("steam_appid = ?", appid).Count(&count).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("查询App失败: %w, appid: %d", err, appid)
		}
		if count == 0 {
			if err := tx.Create(&model.App{SteamAppID: appid}).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("创建占位App失败: %w, appid: %d", err, appid)
			}
		}

		playtime := int64(0)
		if g.PlaytimeForever != nil {
			playtime = *g.PlaytimeForever
		}

		row, ok := existing[appid]
		if !ok {
			row = &model.OwnedGame{
				UserID:          userID,
				SteamAppID:      appid,
				PlaytimeForever: playtime,
				RtimeLastPlayed: g.RtimeLastPlayed,
			}
			if err := tx.Create(row).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("创建OwnedGame失败: %w, appid: %d", err, appid)
			}
			existing[appid] = row // 同批重复appid走更新分支，避免重复插入
			result.Created++
		} else {
			if err := tx.Model(&model.OwnedGame{}).
				Where("user_id = ? AND steam_appid = ?", userID, appid).
				Updates(map[string]interface{}{
					"playtime_forever":  playtime,
					"rtime_last_played": g.RtimeLastPlayed,
				}).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("更新OwnedGame失败: %w, appid: %d", err, appid)
			}
			row.PlaytimeForever = playtime
			row.RtimeLastPlayed = g.RtimeLastPlayed
			result.Updated++
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return result, nil
}

// ListByUser 某用户全部拥有游戏行
func (r *ownedGameRepository) ListByUser(ctx context.Context, userID uint64) ([]*model.OwnedGame, error) {
	var rows []*model.OwnedGame
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
