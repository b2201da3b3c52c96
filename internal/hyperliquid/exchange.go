package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ExchangeClient 封装 /exchange 写接口，所有 action 经 Wallet 签名后提交。
type ExchangeClient struct {
	http   *resty.Client
	info   *InfoClient
	wallet Wallet
	logger *zap.Logger

	// now 便于测试固定 nonce。
	now func() time.Time
}

// ExchangeResponse 为 /exchange 的统一响应外壳。
type ExchangeResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// NewExchangeClient 创建下单客户端。info 用于把币种符号解析为 asset index。
func NewExchangeClient(baseURL string, wallet Wallet, info *InfoClient, timeout time.Duration, logger *zap.Logger) *ExchangeClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if info == nil {
		info = NewInfoClient(baseURL, timeout, logger)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment})

	return &ExchangeClient{
		http:   client,
		info:   info,
		wallet: wallet,
		logger: logger,
		now:    time.Now,
	}
}

// UpdateLeverage 为指定币种设置杠杆倍数。isCross=false 表示逐仓模式。
func (c *ExchangeClient) UpdateLeverage(ctx context.Context, coin string, leverage int, isCross bool) (json.RawMessage, error) {
	meta, err := c.info.Meta(ctx)
	if err != nil {
		return nil, err
	}
	assetIndex, _, ok := meta.FindAsset(coin)
	if !ok {
		// 与预检的未知币种文案保持一致，该错误会原样进入对外的失败载荷。
		return nil, fmt.Errorf("Coin '%s' is not a valid asset on Hyperliquid.", coin)
	}

	action := UpdateLeverageAction{
		Type:     "updateLeverage",
		Asset:    assetIndex,
		IsCross:  isCross,
		Leverage: leverage,
	}

	raw, err := c.submit(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("设置杠杆失败: %w", err)
	}

	c.logger.Info("杠杆已更新",
		zap.String("coin", coin),
		zap.Int("leverage", leverage),
		zap.Bool("is_cross", isCross),
	)
	return raw, nil
}

// PlaceOrder 提交单笔委托，返回交易所的原始响应。
func (c *ExchangeClient) PlaceOrder(ctx context.Context, action OrderAction) (json.RawMessage, error) {
	raw, err := c.submit(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("提交订单失败: %w", err)
	}
	return raw, nil
}

func (c *ExchangeClient) submit(ctx context.Context, action any) (json.RawMessage, error) {
	nonce := uint64(c.now().UnixMilli())

	connectionID, err := ActionHash(action, nonce)
	if err != nil {
		return nil, err
	}
	digest, err := AgentDigest(connectionID, AgentSourceMainnet)
	if err != nil {
		return nil, err
	}
	rawSig, err := c.wallet.SignHash(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("签名 action 失败: %w", err)
	}
	sig, err := SplitSignature(rawSig)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"action":    action,
		"nonce":     nonce,
		"signature": sig,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/exchange")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("exchange 接口返回 %s: %s", resp.Status(), resp.String())
	}

	body := resp.Body()
	var shell ExchangeResponse
	if err := json.Unmarshal(body, &shell); err != nil {
		return nil, fmt.Errorf("解析 exchange 响应失败: %w", err)
	}
	if shell.Status != "ok" {
		return nil, fmt.Errorf("exchange 拒绝 action: %s", string(body))
	}

	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	return raw, nil
}
