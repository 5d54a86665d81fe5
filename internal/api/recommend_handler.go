package api

import (
	"net/http"
	"strconv"

	"SteamGems/internal/service"
	"SteamGems/internal/steam"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecommendHandler 种子导入与推荐查询接口
type RecommendHandler struct {
	recommendService *service.RecommendService
	metadataService  *service.AppMetadataService
	logger           *logrus.Logger
}

// NewRecommendHandler 创建RecommendHandler
func NewRecommendHandler(db *gorm.DB, client *steam.Client, logger *logrus.Logger) *RecommendHandler {
	return &RecommendHandler{
		recommendService: service.NewRecommendService(db, logger),
		metadataService:  service.NewAppMetadataService(db, client, logger),
		logger:           logger,
	}
}

// Seed 种子导入接口（开发/演示用）
// @Summary 按appid列表抓取元数据与评测数并入库
// @Param body body object false "{\"appids\":[570,440,620]}"
// @Success 201 {object} map[string]int
// @Failure 500 {object} map[string]string
// @Router /api/seed [post]
func (h *RecommendHandler) Seed(c *gin.Context) {
	var req struct {
		AppIDs []int64 `json:"appids"`
	}
	_ = c.ShouldBindJSON(&req) // body缺失或畸形时按空处理
	if len(req.AppIDs) == 0 {
		req.AppIDs = []int64{570, 440, 620} // Dota2/TF2/Portal2
	}

	seeded, err := h.metadataService.SeedApps(c.Request.Context(), req.AppIDs)
	if err != nil {
		h.logger.WithError(err).Error("种子导入失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"seeded": seeded})
}

// ListRecommendations 冷门佳作推荐列表
// @Summary 按 score = 好评率/(1+log10(人气代理)) 降序返回
// GET /api/recommendations?limit=10&min_reviews=50&q=portal
func (h *RecommendHandler) ListRecommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	minReviews, _ := strconv.Atoi(c.DefaultQuery("min_reviews", "50"))
	nameQuery := c.Query("q")

	items, err := h.recommendService.ListRecommendations(c.Request.Context(), limit, minReviews, nameQuery)
	if err != nil {
		h.logger.WithError(err).Error("ListRecommendations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}
