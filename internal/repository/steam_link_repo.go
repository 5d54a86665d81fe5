package repository

import (
	"context"

	"SteamGems/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SteamLinkRepository 用户与Steam账号绑定关系仓储接口
type SteamLinkRepository interface {
	// Upsert 绑定或更新用户的steamid64
	Upsert(ctx context.Context, link *model.SteamLink) error
	// GetByUserID 按用户ID查询绑定关系
	GetByUserID(ctx context.Context, userID uint64) (*model.SteamLink, error)
}

type steamLinkRepository struct {
	db *gorm.DB
}

// NewSteamLinkRepository 创建SteamLinkRepository实例
func NewSteamLinkRepository(db *gorm.DB) SteamLinkRepository {
	return &steamLinkRepository{db: db}
}

// Upsert user_id主键冲突时覆盖steamid64
func (r *steamLinkRepository) Upsert(ctx context.Context, link *model.SteamLink) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"steamid64"}),
	}).Create(link).Error
}

// GetByUserID 按用户ID查询绑定关系
func (r *steamLinkRepository) GetByUserID(ctx context.Context, userID uint64) (*model.SteamLink, error) {
	var link model.SteamLink
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
