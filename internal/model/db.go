package model

import (
	"time"

	"gorm.io/datatypes"
)

type App struct {
	SteamAppID           int64          `gorm:"column:steam_appid;primaryKey;autoIncrement:false;comment:Steam应用ID（外部分配，非自增）"`
	Name                 string         `gorm:"column:name;type:varchar(256);index;comment:应用名称"`
	Type                 string         `gorm:"column:type;type:varchar(32);comment:应用类型：game/dlc/demo等"`
	IsFree               bool           `gorm:"column:is_free;type:boolean;default:false;comment:是否免费"`
	MetacriticScore      *int           `gorm:"column:metacritic_score;type:int;comment:Metacritic评分（可空）"`
	RecommendationsTotal *int           `gorm:"column:recommendations_total;type:int;comment:商店推荐总数（人气代理指标，可空）"`
	Positive             int            `gorm:"column:positive;type:int;default:0;comment:好评总数"`
	Negative             int            `gorm:"column:negative;type:int;default:0;comment:差评总数"`
	PriceOverview        datatypes.JSON `gorm:"column:price_overview;type:jsonb;comment:商店价格原始数据"`
	LastFetchedTS        int64          `gorm:"column:last_fetched_ts;type:bigint;default:0;comment:最近一次抓取元数据的时间戳"`
	CreatedAt            time.Time      `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;comment:创建时间"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;comment:更新时间"`
}

// TotalReviews 好评+差评总数
func (a *App) TotalReviews() int {
	return a.Positive + a.Negative
}

// PosRatio 好评率，无评价时为0
func (a *App) PosRatio() float64 {
	total := a.TotalReviews()
	if total == 0 {
		return 0
	}
	return float64(a.Positive) / float64(total)
}

type Genre struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name string `gorm:"column:name;type:varchar(64);uniqueIndex;not null;comment:类型名称（全局唯一）"`
}

type Category struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name string `gorm:"column:name;type:varchar(64);uniqueIndex;not null;comment:分类名称（全局唯一）"`
}

// AppGenre 应用-类型中间表，复合主键保证同一对只存在一行
type AppGenre struct {
	SteamAppID int64  `gorm:"column:steam_appid;primaryKey;autoIncrement:false;comment:关联应用ID"`
	GenreID    uint64 `gorm:"column:genre_id;primaryKey;autoIncrement:false;index:idx_app_genre_genre;comment:关联类型ID"`
}

// AppCategory 应用-分类中间表，复合主键保证同一对只存在一行
type AppCategory struct {
	SteamAppID int64  `gorm:"column:steam_appid;primaryKey;autoIncrement:false;comment:关联应用ID"`
	CategoryID uint64 `gorm:"column:category_id;primaryKey;autoIncrement:false;index:idx_app_category_category;comment:关联分类ID"`
}

type SteamLink struct {
	UserID    uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false;comment:本系统用户ID"`
	SteamID64 string `gorm:"column:steamid64;type:varchar(32);uniqueIndex;not null;comment:Steam 64位账号ID"`
}

// OwnedGame 用户拥有的游戏记录，(user_id, steam_appid) 唯一
type OwnedGame struct {
	UserID          uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false;index:idx_owned_user;comment:本系统用户ID"`
	SteamAppID      int64  `gorm:"column:steam_appid;primaryKey;autoIncrement:false;comment:关联应用ID"`
	PlaytimeForever int64  `gorm:"column:playtime_forever;type:bigint;default:0;comment:累计游玩时长（分钟）"`
	RtimeLastPlayed *int64 `gorm:"column:rtime_last_played;type:bigint;comment:最近游玩时间戳（可空）"`
}

func (App) TableName() string         { return "apps" }
func (Genre) TableName() string       { return "genres" }
func (Category) TableName() string    { return "categories" }
func (AppGenre) TableName() string    { return "app_genres" }
func (AppCategory) TableName() string { return "app_categories" }
func (SteamLink) TableName() string   { return "steam_links" }
func (OwnedGame) TableName() string   { return "owned_games" }
