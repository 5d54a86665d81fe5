package service

import (
	"context"
	"encoding/json"
	"strconv"

	"SteamGems/internal/model"
	"SteamGems/internal/repository"
	"SteamGems/internal/steam"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// safeGet 逐层走嵌套map取字段，任意一层缺失或类型不符返回nil
func safeGet(data map[string]interface{}, path ...string) interface{} {
	var current interface{} = data
	for _, k := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		v, ok := m[k]
		if !ok {
			return nil
		}
		current = v
	}
	return current
}

// toInt 宽松整数转换：JSON数字解码后是float64，偶尔也有字符串数字。
// 转换失败返回nil（该字段置空，不否决整条记录）
func toInt(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return &i
		}
	case int:
		return &n
	}
	return nil
}

// descriptions 过滤原始列表：只保留带非空description的对象条目，
// 投影出description字符串。保序、不去重（去重在入库时按name唯一约束完成）
func descriptions(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue // 非对象条目直接丢弃
		}
		if desc, ok := m["description"].(string); ok && desc != "" {
			out = append(out, desc)
		}
	}
	return out
}

// ParseAppPayload appdetails原始payload → 规范化元数据。
// 返回nil表示数据缺口（顶层块缺失/success为false/缺appid或name），
// 这是预期情况而非错误。所有防御性空值检查集中在这里，下游不再判空
func ParseAppPayload(raw json.RawMessage, appid int64) *model.AppMetadata {
	var root map[string]interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil
	}
	block, _ := root[strconv.FormatInt(appid, 10)].(map[string]interface{})
	if block == nil {
		return nil
	}
	if success, _ := block["success"].(bool); !success {
		return nil
	}
	data, _ := block["data"].(map[string]interface{})
	if data == nil {
		return nil
	}

	steamAppID := toInt(data["steam_appid"])
	name, _ := data["name"].(string)
	if steamAppID == nil || name == "" {
		return nil
	}

	appType, _ := data["type"].(string)
	isFree, _ := data["is_free"].(bool)

	var priceOverview json.RawMessage
	if po, ok := data["price_overview"].(map[string]interface{}); ok {
		if b, err := json.Marshal(po); err == nil {
			priceOverview = b
		}
	}

	return &model.AppMetadata{
		AppID:                int64(*steamAppID),
		Name:                 name,
		Type:                 appType,
		IsFree:               isFree,
		MetacriticScore:      toInt(safeGet(data, "metacritic", "score")),
		RecommendationsTotal: toInt(safeGet(data, "recommendations", "total")),
		Genres:               descriptions(data["genres"]),
		Categories:           descriptions(data["categories"]),
		PriceOverview:        priceOverview,
	}
}

// AppMetadataService 应用元数据同步服务：抓取 → 规范化 → 事务性upsert
type AppMetadataService struct {
	client *steam.Client
	repo   repository.AppRepository
	logger *logrus.Logger
}

// NewAppMetadataService 创建AppMetadataService实例
func NewAppMetadataService(db *gorm.DB, client *steam.Client, logger *logrus.Logger) *AppMetadataService {
	return &AppMetadataService{
		client: client,
		repo:   repository.NewAppRepository(db),
		logger: logger,
	}
}

// UpsertAppMetadata 单个appid的抓取+规范化+入库。
// 网络/存储失败上抛；远端数据缺口返回(nil, nil)，调用方视为"无事可做"
func (s *AppMetadataService) UpsertAppMetadata(ctx context.Context, appid int64) (*model.App, error) {
	raw, err := s.client.AppDetails(ctx, appid)
	if err != nil {
		return nil, err
	}
	meta := ParseAppPayload(raw, appid)
	if meta == nil {
		s.logger.Warnf("appid=%d 元数据缺失或标记失败，跳过", appid)
		return nil, nil
	}
	return s.repo.SaveMetadata(ctx, meta)
}

// BackfillForUser 补抓用户持仓中缺App行的元数据，返回成功upsert的数量。
// 已有App行的appid直接跳过，不产生网络调用；单个appid失败不中断整批
func (s *AppMetadataService) BackfillForUser(ctx context.Context, userID uint64, limit int) (int, error) {
	appids, err := s.repo.ListOwnedAppIDs(ctx, userID, limit)
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.ListExistingAppIDs(ctx, appids)
	if err != nil {
		return 0, err
	}
	existingSet := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	count := 0
	for _, appid := range appids {
		if _, ok := existingSet[appid]; ok {
			continue
		}
		app, err := s.UpsertAppMetadata(ctx, appid)
		if err != nil {
			s.logger.WithError(err).Warnf("补抓appid=%d失败", appid)
			continue
		}
		if app != nil {
			count++
		}
	}
	return count, nil
}

// SeedApps 种子导入：对每个appid做完整元数据upsert并写入评测好差评数，
// 返回成功处理的数量。单个appid失败只记日志不中断
func (s *AppMetadataService) SeedApps(ctx context.Context, appids []int64) (int, error) {
	count := 0
	for _, appid := range appids {
		if _, err := s.UpsertAppMetadata(ctx, appid); err != nil {
			s.logger.WithError(err).Warnf("种子导入appid=%d元数据失败", appid)
			continue
		}
		summary, err := s.client.AppReviewSummary(ctx, appid)
		if err != nil {
			s.logger.WithError(err).Warnf("种子导入appid=%d评测摘要失败", appid)
			continue
		}
		if err := s.repo.SaveReviewCounts(ctx, appid, summary); err != nil {
			s.logger.WithError(err).Warnf("写入appid=%d评测数失败", appid)
			continue
		}
		count++
	}
	return count, nil
}
