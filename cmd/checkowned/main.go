package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"SteamGems/internal/config"
	"SteamGems/internal/steam"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 持仓拉取冒烟检查：绕过HTTP层与数据库，直接调Steam接口打印结果
// 用法：STEAM_API_KEY=xxx STEAMID64=7656119xxxxxxxxxx go run ./cmd/checkowned
func main() {
	_ = godotenv.Load() // .env可不存在

	steamID := os.Getenv("STEAMID64")
	if steamID == "" {
		log.Fatal("请设置STEAMID64环境变量（17位Steam账号ID）")
	}

	cfg := &config.SteamConfig{
		APIBaseURL:   "https://api.steampowered.com",
		StoreBaseURL: "https://store.steampowered.com",
		APIKey:       os.Getenv("STEAM_API_KEY"),
		Timeout:      6,
		CacheTTL:     3600,
	}
	if v := os.Getenv("STEAM_PROXY"); v != "" {
		cfg.Proxy = v
	}

	logger := logrus.New()
	client := steam.NewClient(cfg, logger)

	games, gameCount, err := client.GetOwnedGames(context.Background(), steamID)
	if err != nil {
		logger.Fatalf("拉取拥有游戏失败: %v", err)
	}

	fmt.Printf("game_count: %d\n", gameCount)
	for _, g := range games {
		appid := "-"
		if g.AppID != nil {
			appid = strconv.FormatInt(*g.AppID, 10)
		}
		playtime := int64(0)
		if g.PlaytimeForever != nil {
			playtime = *g.PlaytimeForever
		}
		fmt.Printf("%s\t%s\t%d\n", appid, g.Name, playtime)
	}
}
