package api

import (
	"errors"
	"net/http"
	"strconv"

	"SteamGems/internal/model"
	"SteamGems/internal/service"
	"SteamGems/internal/steam"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OwnedHandler 拥有游戏同步与Steam账号绑定接口
type OwnedHandler struct {
	ownedService    *service.OwnedGamesService
	metadataService *service.AppMetadataService
	logger          *logrus.Logger
}

// NewOwnedHandler 创建OwnedHandler
func NewOwnedHandler(db *gorm.DB, client *steam.Client, logger *logrus.Logger) *OwnedHandler {
	return &OwnedHandler{
		ownedService:    service.NewOwnedGamesService(db, client, logger),
		metadataService: service.NewAppMetadataService(db, client, logger),
		logger:          logger,
	}
}

func parseUserID(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id必须为正整数"})
		return 0, false
	}
	return userID, true
}

// SyncOwned 同步用户拥有的游戏
// body带games字段时直接用payload对账，否则按绑定的Steam账号拉取
// POST /api/users/:user_id/owned/sync
func (h *OwnedHandler) SyncOwned(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req struct {
		Games *[]model.OwnedGameEntry `json:"games"`
	}
	_ = c.ShouldBindJSON(&req) // body可为空

	var result *model.OwnedSyncResult
	var err error
	if req.Games != nil {
		result, err = h.ownedService.SyncGames(c.Request.Context(), userID, *req.Games)
	} else {
		result, err = h.ownedService.SyncUser(c.Request.Context(), userID)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSteamNotLinked), errors.Is(err, steam.ErrMissingAPIKey):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Errorf("同步user_id=%d拥有游戏失败", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// LinkSteam 绑定或更新用户的Steam账号
// PUT /api/users/:user_id/steam-link {"steamid64":"7656119..."}
func (h *OwnedHandler) LinkSteam(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req struct {
		SteamID64 string `json:"steamid64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SteamID64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "steamid64不能为空"})
		return
	}

	if err := h.ownedService.LinkSteamAccount(c.Request.Context(), userID, req.SteamID64); err != nil {
		h.logger.WithError(err).Errorf("绑定user_id=%d的Steam账号失败", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "绑定成功"})
}

// Backfill 补抓用户持仓中缺失的应用元数据
// POST /api/users/:user_id/backfill?limit=200
func (h *OwnedHandler) Backfill(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	count, err := h.metadataService.BackfillForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).Errorf("补抓user_id=%d元数据失败", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backfilled": count})
}
