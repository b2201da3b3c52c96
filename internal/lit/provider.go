package lit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	// SessionMessageTTL 为登录消息的有效期。
	SessionMessageTTL = 10 * time.Minute
	// SessionSigsTTL 为会话签名的有效期。
	SessionSigsTTL = time.Hour

	sessionChain = "ethereum"
)

// Provider 负责完成一次完整的委托签名握手。
// 每次 Acquire 都生成全新的 nonce 与会话密钥，会话从不跨调用复用。
type Provider struct {
	cfg    Config
	logger *zap.Logger

	// now 便于测试固定时间。
	now func() time.Time
}

// NewProvider 创建会话提供者。
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Session 为一次调用独占的委托签名会话，到期自动失效，不做持久化。
type Session struct {
	node         *NodeClient
	pkpPublicKey string
	address      common.Address
	key          *SessionKey
	sigs         SessionSigs
}

// Acquire 执行授权握手：
// 构造受托方签名器 → 节点握手 → 生成会话密钥 → 构造并签名登录消息 →
// 以授权签名换取限时（1小时）、限权（pkp-signing）的会话签名。
func (p *Provider) Acquire(ctx context.Context, pkpPublicKey, delegateeKey string) (*Session, error) {
	signer, err := NewSigner(delegateeKey)
	if err != nil {
		return nil, err
	}

	node := NewNodeClient(p.cfg, p.logger)
	if err := node.Connect(ctx); err != nil {
		return nil, err
	}

	sessionKey, err := NewSessionKey()
	if err != nil {
		return nil, err
	}

	pkpAddress, err := AddressFromPKPPublicKey(pkpPublicKey)
	if err != nil {
		return nil, err
	}

	now := p.now()
	message := BuildSIWEMessage(SIWEParams{
		Address:       pkpAddress,
		Nonce:         strconv.FormatInt(now.UnixMilli(), 10),
		IssuedAt:      now,
		Expiration:    now.Add(SessionMessageTTL),
		SessionKeyURI: sessionKey.URI(),
		Resources:     []string{ResourceWildcard},
	})

	sig, err := signer.PersonalSign(message)
	if err != nil {
		return nil, err
	}

	authSig := AuthSig{
		Sig:           sig,
		DerivedVia:    "web3.eth.personal.sign",
		SignedMessage: message,
		Address:       strings.ToLower(signer.Address().Hex()),
	}

	sigs, err := node.GetSessionSigs(ctx, SessionSigsRequest{
		Chain:         sessionChain,
		Expiration:    now.Add(SessionSigsTTL).UTC().Format(time.RFC3339),
		SessionKeyURI: sessionKey.URI(),
		Resources: []ResourceAbilityRequest{
			{Resource: ResourceWildcard, Ability: AbilityPKPSigning},
		},
		AuthSig: authSig,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("委托签名会话已建立",
		zap.String("pkp_address", pkpAddress.Hex()),
		zap.String("session_key", sessionKey.URI()),
	)

	return &Session{
		node:         node,
		pkpPublicKey: pkpPublicKey,
		address:      pkpAddress,
		key:          sessionKey,
		sigs:         sigs,
	}, nil
}

// Wallet 返回绑定本会话的 PKP 钱包。
func (s *Session) Wallet() *PKPWallet {
	return &PKPWallet{session: s}
}

// PKPWallet 通过会话签名委托 Lit 节点完成 PKP 签名。
type PKPWallet struct {
	session *Session
}

// Address 返回 PKP 对应的以太坊地址。
func (w *PKPWallet) Address() common.Address {
	return w.session.address
}

// SignHash 请求节点对 32 字节摘要做 PKP 签名。
func (w *PKPWallet) SignHash(ctx context.Context, hash common.Hash) ([]byte, error) {
	sigHex, err := w.session.node.PKPSign(ctx, w.session.pkpPublicKey, hash.Bytes(), w.session.sigs)
	if err != nil {
		return nil, err
	}

	sig := common.FromHex(sigHex)
	if len(sig) != 65 {
		return nil, fmt.Errorf("PKP 签名长度 %d 非法，应为65字节", len(sig))
	}
	return sig, nil
}
