package model

import "encoding/json"

// ReviewSummary Steam商店评测摘要（appreviews接口query_summary字段）
type ReviewSummary struct {
	ReviewScore     int    `json:"review_score"`      // 评分等级（1-9）
	ReviewScoreDesc string `json:"review_score_desc"` // 评分描述（如"Very Positive"）
	TotalPositive   int    `json:"total_positive"`    // 好评总数
	TotalNegative   int    `json:"total_negative"`    // 差评总数
	TotalReviews    int    `json:"total_reviews"`     // 评测总数
}

// ReviewSummaryResponse appreviews接口的完整响应外层
type ReviewSummaryResponse struct {
	Success      int           `json:"success"`
	QuerySummary ReviewSummary `json:"query_summary"`
}

// OwnedGameEntry GetOwnedGames接口返回的单个游戏记录
// 字段均为指针：接口可能缺失任意字段，缺失与0需要区分
type OwnedGameEntry struct {
	AppID           *int64 `json:"appid"`             // 应用ID（缺失时整条记录跳过）
	Name            string `json:"name"`              // 游戏名称（include_appinfo=1时返回）
	PlaytimeForever *int64 `json:"playtime_forever"`  // 累计游玩时长（分钟）
	RtimeLastPlayed *int64 `json:"rtime_last_played"` // 最近游玩时间戳
}

// OwnedGamesResponse GetOwnedGames接口的完整响应外层
type OwnedGamesResponse struct {
	Response struct {
		GameCount int              `json:"game_count"`
		Games     []OwnedGameEntry `json:"games"`
	} `json:"response"`
}

// AppMetadata 规范化后的应用元数据（appdetails原始payload解析结果）
// 所有防御性空值检查集中在解析层，下游直接使用
type AppMetadata struct {
	AppID                int64           // Steam应用ID
	Name                 string          // 应用名称
	Type                 string          // 应用类型
	IsFree               bool            // 是否免费
	MetacriticScore      *int            // Metacritic评分，解析失败为nil
	RecommendationsTotal *int            // 商店推荐总数，解析失败为nil
	Genres               []string        // 类型名称列表（保序，不去重）
	Categories           []string        // 分类名称列表（保序，不去重）
	PriceOverview        json.RawMessage // 价格原始数据，缺失为nil
}

// OwnedSyncResult 拥有游戏同步结果统计
type OwnedSyncResult struct {
	Created       int `json:"created"`        // 新建行数
	Updated       int `json:"updated"`        // 更新行数
	TotalIncoming int `json:"total_incoming"` // 入参记录总数（含跳过）
}
