package service

import (
	"context"
	"math"
	"sort"

	"SteamGems/internal/model"
	"SteamGems/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecommendationItem 推荐列表单项
type RecommendationItem struct {
	AppID        int64   `json:"appid"`
	Name         string  `json:"name"`
	PosRatio     float64 `json:"pos_ratio"`
	TotalReviews int     `json:"total_reviews"`
	// 字段名沿用owners_estimate，避免破坏已有客户端
	OwnersEstimate int     `json:"owners_estimate"`
	Score          float64 `json:"score"`
}

// PopularityProxy 人气代理：优先商店推荐总数，缺失时退回评测总数，下限为1
func PopularityProxy(app *model.App) int {
	val := app.TotalReviews()
	if app.RecommendationsTotal != nil {
		val = *app.RecommendationsTotal
	}
	if val < 1 {
		return 1
	}
	return val
}

// HiddenGemScore 冷门佳作评分（纯函数）：
// score = 好评率 / (1 + log10(人气代理))，无评测时为0
func HiddenGemScore(app *model.App) float64 {
	if app.TotalReviews() == 0 {
		return 0
	}
	return app.PosRatio() / (1.0 + math.Log10(float64(PopularityProxy(app))))
}

// RecommendService 推荐查询服务
type RecommendService struct {
	repo   repository.AppRepository
	logger *logrus.Logger
}

// NewRecommendService 创建RecommendService实例
func NewRecommendService(db *gorm.DB, logger *logrus.Logger) *RecommendService {
	return &RecommendService{
		repo:   repository.NewAppRepository(db),
		logger: logger,
	}
}

// ListRecommendations 按评分降序返回前limit个候选。
// minReviews过滤评测数不足的应用，nameQuery可选名称模糊过滤
func (s *RecommendService) ListRecommendations(ctx context.Context, limit, minReviews int, nameQuery string) ([]RecommendationItem, error) {
	if limit <= 0 {
		limit = 10
	}
	candidates, err := s.repo.ListCandidates(ctx, nameQuery)
	if err != nil {
		return nil, err
	}

	filtered := make([]*model.App, 0, len(candidates))
	for _, app := range candidates {
		if app.TotalReviews() >= minReviews {
			filtered = append(filtered, app)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return HiddenGemScore(filtered[i]) > HiddenGemScore(filtered[j])
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	items := make([]RecommendationItem, 0, len(filtered))
	for _, app := range filtered {
		items = append(items, RecommendationItem{
			AppID:          app.SteamAppID,
			Name:           app.Name,
			PosRatio:       math.Round(app.PosRatio()*10000) / 10000,
			TotalReviews:   app.TotalReviews(),
			OwnersEstimate: PopularityProxy(app),
			Score:          HiddenGemScore(app),
		})
	}
	return items, nil
}
