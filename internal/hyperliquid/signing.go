package hyperliquid

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

// Wallet 抽象 exchange action 的签名方。
// 既可以是本地私钥，也可以是经 Lit 会话委托的 PKP 钱包。
type Wallet interface {
	Address() common.Address
	SignHash(ctx context.Context, hash common.Hash) ([]byte, error)
}

// Signature 为 exchange 请求中的签名 wire 形式。
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

const (
	// AgentSourceMainnet 为主网 agent source 标识。
	AgentSourceMainnet = "a"

	signingChainID = 1337
	zeroAddressHex = "0x0000000000000000000000000000000000000000"
)

// ActionHash 计算 action 的 connectionId：
// msgpack(action) || nonce(8字节大端) || 0x00（无 vault 地址）再做 keccak256。
func ActionHash(action any, nonce uint64) (common.Hash, error) {
	encoded, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("msgpack 编码 action 失败: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(encoded)

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	buf.Write(nonceBytes[:])
	buf.WriteByte(0x00)

	return crypto.Keccak256Hash(buf.Bytes()), nil
}

// AgentDigest 构造 EIP-712 Agent 签名摘要。
func AgentDigest(connectionID common.Hash, source string) (common.Hash, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(signingChainID),
			VerifyingContract: zeroAddressHex,
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": connectionID[:],
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return common.Hash{}, fmt.Errorf("计算 EIP-712 摘要失败: %w", err)
	}
	return common.BytesToHash(digest), nil
}

// SplitSignature 将 65 字节签名拆为 r/s/v wire 形式。
func SplitSignature(sig []byte) (Signature, error) {
	if len(sig) != 65 {
		return Signature{}, fmt.Errorf("签名长度 %d 非法，应为65字节", len(sig))
	}

	v := sig[64]
	if v < 27 {
		v += 27
	}

	return Signature{
		R: "0x" + common.Bytes2Hex(sig[:32]),
		S: "0x" + common.Bytes2Hex(sig[32:64]),
		V: v,
	}, nil
}
