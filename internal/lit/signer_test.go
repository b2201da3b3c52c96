package lit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("生成测试私钥失败: %v", err)
	}
	signer, err := NewSigner(fmt.Sprintf("%x", crypto.FromECDSA(key)))
	if err != nil {
		t.Fatalf("NewSigner returned error: %v", err)
	}
	return signer
}

func TestNewSigner_AcceptsHexWithPrefix(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("生成测试私钥失败: %v", err)
	}
	hexKey := fmt.Sprintf("0x%x", crypto.FromECDSA(key))

	signer, err := NewSigner(hexKey)
	if err != nil {
		t.Fatalf("NewSigner returned error: %v", err)
	}
	if signer.Address() != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("derived address mismatch")
	}

	if _, err := NewSigner("not-a-key"); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}

func TestPersonalSign_RecoversSignerAddress(t *testing.T) {
	signer := newTestSigner(t)
	message := "litprotocol.com wants you to sign in with your Ethereum account:"

	sigHex, err := signer.PersonalSign(message)
	if err != nil {
		t.Fatalf("PersonalSign returned error: %v", err)
	}
	if !strings.HasPrefix(sigHex, "0x") {
		t.Fatalf("signature must be 0x prefixed: %s", sigHex)
	}

	sig := common.FromHex(sigHex)
	if len(sig) != 65 {
		t.Fatalf("signature length %d, want 65", len(sig))
	}

	// 按 EIP-191 还原摘要并恢复签名地址。
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	digest := crypto.Keccak256([]byte(prefixed))

	recovery := make([]byte, 65)
	copy(recovery, sig)
	recovery[64] -= 27

	pub, err := crypto.SigToPub(digest, recovery)
	if err != nil {
		t.Fatalf("SigToPub returned error: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != signer.Address() {
		t.Fatalf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}

func TestAddressFromPKPPublicKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("生成测试私钥失败: %v", err)
	}
	pubHex := fmt.Sprintf("0x%x", crypto.FromECDSAPub(&key.PublicKey))

	addr, err := AddressFromPKPPublicKey(pubHex)
	if err != nil {
		t.Fatalf("AddressFromPKPPublicKey returned error: %v", err)
	}
	if addr != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("derived address mismatch")
	}

	if _, err := AddressFromPKPPublicKey("0x1234"); err == nil {
		t.Fatalf("expected error for malformed public key")
	}
}
