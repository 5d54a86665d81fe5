package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SteamGems/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppRepository 应用元数据仓储接口
type AppRepository interface {
	// SaveMetadata 事务性落库：App标量字段upsert + 类型/分类get-or-create + 中间表补插
	SaveMetadata(ctx context.Context, meta *model.AppMetadata) (*model.App, error)
	// SaveReviewCounts 写入评测好差评数（行不存在时建最小行）
	SaveReviewCounts(ctx context.Context, appid int64, summary *model.ReviewSummary) error
	// GetByID 按appid查询，不存在返回gorm.ErrRecordNotFound
	GetByID(ctx context.Context, appid int64) (*model.App, error)
	// ListExistingAppIDs 给定appid列表中已存在App行的子集
	ListExistingAppIDs(ctx context.Context, appids []int64) ([]int64, error)
	// ListCandidates 推荐候选集：全量App行，可按名称模糊过滤
	ListCandidates(ctx context.Context, nameQuery string) ([]*model.App, error)
	// ListOwnedAppIDs 某用户拥有的appid列表（带limit）
	ListOwnedAppIDs(ctx context.Context, userID uint64, limit int) ([]int64, error)
}

type appRepository struct {
	db *gorm.DB
}

// NewAppRepository 创建AppRepository实例
func NewAppRepository(db *gorm.DB) AppRepository {
	return &appRepository{db: db}
}

// SaveMetadata 整批原子提交：任何一步失败整体回滚，不留半写状态
func (r *appRepository) SaveMetadata(ctx context.Context, meta *model.AppMetadata) (*model.App, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	// 1. App标量字段upsert：不存在则建，存在则就地覆盖为最新远端状态
	now := time.Now().Unix()
	var app model.App
	err := tx.Where("steam_appid = ?", meta.AppID).First(&app).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		app = model.App{
			SteamAppID:           meta.AppID,
			Name:                 meta.Name,
			Type:                 meta.Type,
			IsFree:               meta.IsFree,
			MetacriticScore:      meta.MetacriticScore,
			RecommendationsTotal: meta.RecommendationsTotal,
			PriceOverview:        datatypes.JSON(meta.PriceOverview),
			LastFetchedTS:        now,
		}
		if err := tx.Create(&app).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("创建App失败: %w, appid: %d", err, meta.AppID)
		}
	case err != nil:
		tx.Rollback()
		return nil, fmt.Errorf("查询App失败: %w, appid: %d", err, meta.AppID)
	default:
		updates := map[string]interface{}{
			"name":                  meta.Name,
			"type":                  meta.Type,
			"is_free":               meta.IsFree,
			"metacritic_score":      meta.MetacriticScore,
			"recommendations_total": meta.RecommendationsTotal,
			"price_overview":        datatypes.JSON(meta.PriceOverview),
			"last_fetched_ts":       now,
		}
		if err := tx.Model(&model.App{}).Where("steam_appid = ?", meta.AppID).
			Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("更新App失败: %w, appid: %d", err, meta.AppID)
		}
		app.Name = meta.Name
		app.Type = meta.Type
		app.IsFree = meta.IsFree
		app.MetacriticScore = meta.MetacriticScore
		app.RecommendationsTotal = meta.RecommendationsTotal
		app.PriceOverview = datatypes.JSON(meta.PriceOverview)
		app.LastFetchedTS = now
	}

	// 2. 类型/分类get-or-create（name全局唯一，并发安全）
	genreIDs := make([]uint64, 0, len(meta.Genres))
	for _, name := range meta.Genres {
		id, err := r.getOrCreateGenre(tx, name)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		genreIDs = append(genreIDs, id)
	}
	categoryIDs := make([]uint64, 0, len(meta.Categories))
	for _, name := range meta.Categories {
		id, err := r.getOrCreateCategory(tx, name)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		categoryIDs = append(categoryIDs, id)
	}

	// 3. 中间表只补插不删除：远端后续抓取丢弃某类型时，旧关联保留（已知限制）
	for _, gid := range genreIDs {
		var count int64
		if err := tx.Model(&model.AppGenre{}).
			Where("steam_appid = ? AND genre_id = ?", app.SteamAppID, gid).
			Count(&count).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("查询AppGenre失败: %w", err)
		}
		if count == 0 {
			if err := tx.Create(&model.AppGenre{SteamAppID: app.SteamAppID, GenreID: gid}).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("创建AppGenre失败: %w, appid: %d", err, app.SteamAppID)
			}
		}
	}
	for _, cid := range categoryIDs {
		var count int64
		if err := tx.Model(&model.AppCategory{}).
			Where("steam_appid = ? AND category_id = ?", app.SteamAppID, cid).
			Count(&count).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("查询AppCategory失败: %w", err)
		}
		if count == 0 {
			if err := tx.Create(&model.AppCategory{SteamAppID: app.SteamAppID, CategoryID: cid}).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("创建AppCategory失败: %w, appid: %d", err, app.SteamAppID)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return &app, nil
}

// getOrCreateGenre 乐观插入+冲突回读：ON CONFLICT DO NOTHING不会中止当前事务，
// 未拿到自增ID（本次未插入，说明已被并发创建）时按name回读已提交行
func (r *appRepository) getOrCreateGenre(tx *gorm.DB, name string) (uint64, error) {
	genre := model.Genre{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&genre).Error; err != nil {
		return 0, fmt.Errorf("创建Genre失败: %w, name: %s", err, name)
	}
	if genre.ID == 0 {
		if err := tx.Where("name = ?", name).First(&genre).Error; err != nil {
			return 0, fmt.Errorf("回读Genre失败: %w, name: %s", err, name)
		}
	}
	return genre.ID, nil
}

// getOrCreateCategory 同getOrCreateGenre
func (r *appRepository) getOrCreateCategory(tx *gorm.DB, name string) (uint64, error) {
	category := model.Category{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
		return 0, fmt.Errorf("创建Category失败: %w, name: %s", err, name)
	}
	if category.ID == 0 {
		if err := tx.Where("name = ?", name).First(&category).Error; err != nil {
			return 0, fmt.Errorf("回读Category失败: %w, name: %s", err, name)
		}
	}
	return category.ID, nil
}

// SaveReviewCounts 行不存在时建最小行（仅appid+评测数），存在时只覆盖评测字段
func (r *appRepository) SaveReviewCounts(ctx context.Context, appid int64, summary *model.ReviewSummary) error {
	db := r.db.WithContext(ctx)
	var app model.App
	err := db.Where("steam_appid = ?", appid).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&model.App{
			SteamAppID: appid,
			Positive:   summary.TotalPositive,
			Negative:   summary.TotalNegative,
		}).Error
	}
	if err != nil {
		return fmt.Errorf("查询App失败: %w, appid: %d", err, appid)
	}
	return db.Model(&model.App{}).Where("steam_appid = ?", appid).
		Updates(map[string]interface{}{
			"positive": summary.TotalPositive,
			"negative": summary.TotalNegative,
		}).Error
}

// GetByID 按appid查询
func (r *appRepository) GetByID(ctx context.Context, appid int64) (*model.App, error) {
	var app model.App
	if err := r.db.WithContext(ctx).Where("steam_appid = ?", appid).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ListExistingAppIDs 给定appid列表中已存在App行的子集
func (r *appRepository) ListExistingAppIDs(ctx context.Context, appids []int64) ([]int64, error) {
	if len(appids) == 0 {
		return []int64{}, nil
	}
	var existing []int64
	if err := r.db.WithContext(ctx).Model(&model.App{}).
		Where("steam_appid IN ?", appids).
		Pluck("steam_appid", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// ListCandidates 推荐候选集，nameQuery非空时按名称模糊过滤（大小写不敏感）
func (r *appRepository) ListCandidates(ctx context.Context, nameQuery string) ([]*model.App, error) {
	db := r.db.WithContext(ctx).Model(&model.App{})
	if nameQuery != "" {
		db = db.Where("lower(name) LIKE ?", "%"+strings.ToLower(nameQuery)+"%")
	}
	var apps []*model.App
	if err := db.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// ListOwnedAppIDs 某用户拥有的appid列表
func (r *appRepository) ListOwnedAppIDs(ctx context.Context, userID uint64, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 200
	}
	var appids []int64
	if err := r.db.WithContext(ctx).Model(&model.OwnedGame{}).
		Where("user_id = ?", userID).
		Limit(limit).
		Pluck("steam_appid", &appids).Error; err != nil {
		return nil, err
	}
	return appids, nil
}
