package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SteamGems/internal/config"
	"SteamGems/internal/model"
	"SteamGems/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// ErrMissingAPIKey GetOwnedGames必须配置Web API密钥，缺失时在发起网络请求前直接失败
var ErrMissingAPIKey = errors.New("缺少STEAM_API_KEY，无法调用GetOwnedGames接口")

// Client 带TTL缓存的Steam接口客户端。
// 三个访问方法（应用详情/评测摘要/拥有游戏）都经过GetOrFetch，
// 同一逻辑请求在TTL窗口内只产生一次网络调用
type Client struct {
	cfg        *config.SteamConfig
	httpClient *http.Client
	cache      *Cache
	logger     *logrus.Logger
}

// NewClient 创建Steam客户端，缓存TTL来自配置
func NewClient(cfg *config.SteamConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		cache:      NewCache(time.Duration(cfg.CacheTTL) * time.Second),
		logger:     logger,
	}
}

// fingerprint 缓存指纹：接口地址 + 编码后的查询参数。
// url.Values.Encode按key排序，同一逻辑请求在进程内必然映射到同一指纹
func fingerprint(endpoint string, params url.Values) string {
	return endpoint + "|" + params.Encode()
}

// getJSON 经缓存执行GET请求。非2xx视为失败，失败不写缓存
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.cache.GetOrFetch(fingerprint(endpoint, params), func() (json.RawMessage, error) {
		reqURL := endpoint
		if len(params) > 0 {
			reqURL = endpoint + "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("构造请求失败: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("请求%s失败: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("请求%s返回非成功状态码: %d", endpoint, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("读取%s响应失败: %w", endpoint, err)
		}
		return body, nil
	})
}

// AppDetails 商店应用详情，返回以appid字符串为key的原始payload，
// 结构松散，交由service层的normalizer防御性解析
func (c *Client) AppDetails(ctx context.Context, appid int64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("appids", strconv.FormatInt(appid, 10))
	return c.getJSON(ctx, c.cfg.StoreBaseURL+"/api/appdetails", params)
}

// AppReviewSummary 商店评测摘要（好评/差评总数）
func (c *Client) AppReviewSummary(ctx context.Context, appid int64) (*model.ReviewSummary, error) {
	params := url.Values{}
	params.Set("json", "1")
	params.Set("purchase_type", "all")
	params.Set("filter", "summary")
	raw, err := c.getJSON(ctx, fmt.Sprintf("%s/appreviews/%d", c.cfg.StoreBaseURL, appid), params)
	if err != nil {
		return nil, err
	}
	var resp model.ReviewSummaryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("解析评测摘要失败: %w", err)
	}
	return &resp.QuerySummary, nil
}

// GetOwnedGames 用户拥有的游戏列表及总数。
// 接口路径为Valve文档中的v0001版本
func (c *Client) GetOwnedGames(ctx context.Context, steamID string) ([]model.OwnedGameEntry, int, error) {
	if c.cfg.APIKey == "" {
		return nil, 0, ErrMissingAPIKey
	}
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")
	raw, err := c.getJSON(ctx, c.cfg.APIBaseURL+"/IPlayerService/GetOwnedGames/v0001/", params)
	if err != nil {
		return nil, 0, err
	}
	var resp model.OwnedGamesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, 0, fmt.Errorf("解析GetOwnedGames响应失败: %w", err)
	}
	return resp.Response.Games, resp.Response.GameCount, nil
}
