package hyperliquid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultAPIURL 为 Hyperliquid 主网 REST 入口。
const DefaultAPIURL = "https://api.hyperliquid.xyz"

// InfoClient 封装 /info 只读接口。
type InfoClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewInfoClient 创建信息查询客户端。
func NewInfoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *InfoClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment})

	return &InfoClient{http: client, logger: logger}
}

// Meta 拉取市场元数据。
func (c *InfoClient) Meta(ctx context.Context) (Meta, error) {
	var meta Meta
	if err := c.post(ctx, map[string]any{"type": "meta"}, &meta); err != nil {
		return Meta{}, fmt.Errorf("拉取市场元数据失败: %w", err)
	}
	return meta, nil
}

// AllMids 拉取全部币种的中间价。
func (c *InfoClient) AllMids(ctx context.Context) (AllMids, error) {
	var mids AllMids
	if err := c.post(ctx, map[string]any{"type": "allMids"}, &mids); err != nil {
		return nil, fmt.Errorf("拉取中间价失败: %w", err)
	}
	return mids, nil
}

// ClearinghouseState 拉取指定地址的清算所状态。
func (c *InfoClient) ClearinghouseState(ctx context.Context, user string) (ClearinghouseState, error) {
	var state ClearinghouseState
	body := map[string]any{"type": "clearinghouseState", "user": user}
	if err := c.post(ctx, body, &state); err != nil {
		return ClearinghouseState{}, fmt.Errorf("拉取账户状态失败: %w", err)
	}
	return state, nil
}

func (c *InfoClient) post(ctx context.Context, body any, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(out).
		Post("/info")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("info 接口返回 %s: %s", resp.Status(), resp.String())
	}
	return nil
}
