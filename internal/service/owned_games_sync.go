package service

import (
	"context"
	"errors"
	"fmt"

	"SteamGems/internal/model"
	"SteamGems/internal/repository"
	"SteamGems/internal/steam"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSteamNotLinked 用户未绑定Steam账号时无法按账号拉取持仓
var ErrSteamNotLinked = errors.New("用户未绑定Steam账号")

// OwnedGamesService 拥有游戏同步服务
type OwnedGamesService struct {
	client    *steam.Client
	ownedRepo repository.OwnedGameRepository
	linkRepo  repository.SteamLinkRepository
	logger    *logrus.Logger
}

// NewOwnedGamesService 创建OwnedGamesService实例
func NewOwnedGamesService(db *gorm.DB, client *steam.Client, logger *logrus.Logger) *OwnedGamesService {
	return &OwnedGamesService{
		client:    client,
		ownedRepo: repository.NewOwnedGameRepository(db),
		linkRepo:  repository.NewSteamLinkRepository(db),
		logger:    logger,
	}
}

// SyncGames 用调用方提供的游戏列表对账（HTTP层直接传payload的路径）
func (s *OwnedGamesService) SyncGames(ctx context.Context, userID uint64, games []model.OwnedGameEntry) (*model.OwnedSyncResult, error) {
	return s.ownedRepo.Reconcile(ctx, userID, games)
}

// SyncUser 按用户绑定的Steam账号拉取持仓并对账
func (s *OwnedGamesService) SyncUser(ctx context.Context, userID uint64) (*model.OwnedSyncResult, error) {
	link, err := s.linkRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSteamNotLinked
	}
	if err != nil {
		return nil, fmt.Errorf("查询Steam绑定失败: %w, user_id: %d", err, userID)
	}

	games, gameCount, err := s.client.GetOwnedGames(ctx, link.SteamID64)
	if err != nil {
		return nil, fmt.Errorf("拉取拥有游戏失败: %w, user_id: %d", err, userID)
	}
	s.logger.Infof("user_id=%d 拉取到%d个游戏（接口报告game_count=%d）", userID, len(games), gameCount)

	return s.ownedRepo.Reconcile(ctx, userID, games)
}

// LinkSteamAccount 绑定或更新用户的Steam账号
func (s *OwnedGamesService) LinkSteamAccount(ctx context.Context, userID uint64, steamID64 string) error {
	if steamID64 == "" {
		return errors.New("steamid64不能为空")
	}
	return s.linkRepo.Upsert(ctx, &model.SteamLink{UserID: userID, SteamID64: steamID64})
}
