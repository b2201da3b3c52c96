package lit

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	siweDomain    = "litprotocol.com"
	siweStatement = "Lit Protocol PKP session signature"
	siweVersion   = "1"
	siweChainID   = "1"
)

// SessionKey 为单次调用生成的 ed25519 会话密钥对，从不复用。
type SessionKey struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewSessionKey 生成新的会话密钥。
func NewSessionKey() (*SessionKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成会话密钥失败: %w", err)
	}
	return &SessionKey{pub: pub, priv: priv}, nil
}

// URI 返回会话密钥标识。
func (k *SessionKey) URI() string {
	return "lit:session:" + hex.EncodeToString(k.pub)
}

// Sign 用会话私钥签名，供会话内请求自证。
func (k *SessionKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// SIWEParams 为构造会话登录消息所需的全部字段。
type SIWEParams struct {
	Address       common.Address
	Nonce         string
	IssuedAt      time.Time
	Expiration    time.Time
	SessionKeyURI string
	Resources     []string
}

// BuildSIWEMessage 按 EIP-4361 文本布局渲染登录消息。
// URI 指向会话密钥，受托方对该消息 personal_sign 后即构成授权凭证。
func BuildSIWEMessage(p SIWEParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", siweDomain)
	fmt.Fprintf(&b, "%s\n\n", p.Address.Hex())
	fmt.Fprintf(&b, "%s\n\n", siweStatement)
	fmt.Fprintf(&b, "URI: %s\n", p.SessionKeyURI)
	fmt.Fprintf(&b, "Version: %s\n", siweVersion)
	fmt.Fprintf(&b, "Chain ID: %s\n", siweChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", p.Nonce)
	fmt.Fprintf(&b, "Issued At: %s\n", p.IssuedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Expiration Time: %s", p.Expiration.UTC().Format(time.RFC3339))

	if len(p.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, r := range p.Resources {
			fmt.Fprintf(&b, "\n- %s", r)
		}
	}

	return b.String()
}
