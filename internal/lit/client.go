package lit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultNetwork 为默认接入的 Lit 网络。
	DefaultNetwork = "datil"

	// AbilityPKPSigning 为会话签名请求的能力范围。
	AbilityPKPSigning = "pkp-signing"
	// ResourceWildcard 表示对任意 lit-action 资源生效。
	ResourceWildcard = "lit-action://*"
)

// Config 描述 Lit 节点接入参数。
type Config struct {
	NodeURL string
	Network string
	Timeout time.Duration
}

// AuthSig 为 Lit 体系内通用的签名凭证结构。
type AuthSig struct {
	Sig           string `json:"sig"`
	DerivedVia    string `json:"derivedVia"`
	SignedMessage string `json:"signedMessage"`
	Address       string `json:"address"`
}

// ResourceAbilityRequest 声明一项资源与其上的能力。
type ResourceAbilityRequest struct {
	Resource string `json:"resource"`
	Ability  string `json:"ability"`
}

// SessionSigs 为各节点返回的会话签名集合。
type SessionSigs map[string]AuthSig

// SessionSigsRequest 为一次会话签名握手的入参。
type SessionSigsRequest struct {
	Chain         string                   `json:"chain"`
	Expiration    string                   `json:"expiration"`
	SessionKeyURI string                   `json:"sessionKey"`
	Resources     []ResourceAbilityRequest `json:"resourceAbilityRequests"`
	AuthSig       AuthSig                  `json:"authSig"`
}

type sessionSigsResponse struct {
	SessionSigs SessionSigs `json:"sessionSigs"`
}

type pkpSignRequest struct {
	ToSign       string      `json:"toSign"`
	PKPPublicKey string      `json:"pkpPublicKey"`
	SessionSigs  SessionSigs `json:"sessionSigs"`
}

type pkpSignResponse struct {
	Signature string `json:"signature"`
}

// NodeClient 封装与 Lit 节点的 HTTP 交互。
type NodeClient struct {
	http      *resty.Client
	network   string
	logger    *zap.Logger
	connected bool
}

// NewNodeClient 创建节点客户端。
func NewNodeClient(cfg Config, logger *zap.Logger) *NodeClient {
	if cfg.Network == "" {
		cfg.Network = DefaultNetwork
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.NodeURL).
		SetTimeout(cfg.Timeout).
		SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment})

	return &NodeClient{
		http:    client,
		network: cfg.Network,
		logger:  logger,
	}
}

// Connect 与节点完成握手，成功后方可请求会话签名。
func (c *NodeClient) Connect(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"litNetwork": c.network}).
		Post("/web/handshake")
	if err != nil {
		return fmt.Errorf("与 Lit 节点握手失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Lit 节点握手返回 %s: %s", resp.Status(), resp.String())
	}

	c.connected = true
	c.logger.Debug("Lit 节点握手完成", zap.String("network", c.network))
	return nil
}

// GetSessionSigs 以受托方的授权签名换取限时限权的会话签名。
func (c *NodeClient) GetSessionSigs(ctx context.Context, req SessionSigsRequest) (SessionSigs, error) {
	if !c.connected {
		return nil, fmt.Errorf("节点未连接，需先调用 Connect")
	}

	var out sessionSigsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/web/sign_session_key")
	if err != nil {
		return nil, fmt.Errorf("请求会话签名失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("会话签名请求返回 %s: %s", resp.Status(), resp.String())
	}
	if len(out.SessionSigs) == 0 {
		return nil, fmt.Errorf("节点未返回会话签名")
	}

	return out.SessionSigs, nil
}

// PKPSign 在会话签名授权下请求 PKP 对摘要签名。
func (c *NodeClient) PKPSign(ctx context.Context, pkpPublicKey string, toSign []byte, sigs SessionSigs) (string, error) {
	req := pkpSignRequest{
		ToSign:       "0x" + fmt.Sprintf("%x", toSign),
		PKPPublicKey: pkpPublicKey,
		SessionSigs:  sigs,
	}

	var out pkpSignResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/web/pkp/sign")
	if err != nil {
		return "", fmt.Errorf("PKP 签名请求失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("PKP 签名请求返回 %s: %s", resp.Status(), resp.String())
	}
	if out.Signature == "" {
		return "", fmt.Errorf("节点未返回签名")
	}

	return out.Signature, nil
}
