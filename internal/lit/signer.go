package lit

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer 持有受托方（delegatee）的 secp256k1 私钥，
// 用于对会话登录消息做 EIP-191 personal_sign。
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner 从十六进制私钥构造签名器，兼容 0x 前缀。
func NewSigner(hexKey string) (*Signer, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("解析受托方私钥失败: %w", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address 返回受托方地址。
func (s *Signer) Address() common.Address {
	return s.address
}

// PersonalSign 对消息做 EIP-191 签名，返回 0x 前缀的65字节签名串。
func (s *Signer) PersonalSign(message string) (string, error) {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	digest := crypto.Keccak256Hash([]byte(prefixed))

	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return "", fmt.Errorf("personal_sign 失败: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// AddressFromPKPPublicKey 由 PKP 的未压缩公钥推导以太坊地址。
func AddressFromPKPPublicKey(pkpPublicKey string) (common.Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pkpPublicKey), "0x")
	pub, err := crypto.UnmarshalPubkey(common.Hex2Bytes(trimmed))
	if err != nil {
		return common.Address{}, fmt.Errorf("解析 PKP 公钥失败: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
