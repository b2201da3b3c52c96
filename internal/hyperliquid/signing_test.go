package hyperliquid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionHash_SensitiveToActionAndNonce(t *testing.T) {
	action := UpdateLeverageAction{Type: "updateLeverage", Asset: 3, IsCross: false, Leverage: 10}

	h1, err := ActionHash(action, 1700000000000)
	require.NoError(t, err)
	h2, err := ActionHash(action, 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "同一 action 与 nonce 的哈希必须稳定")

	h3, err := ActionHash(action, 1700000000001)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "nonce 变化必须改变哈希")

	action.Leverage = 20
	h4, err := ActionHash(action, 1700000000000)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4, "action 变化必须改变哈希")
}

func TestAgentDigest(t *testing.T) {
	action := OrderAction{
		Type: "order",
		Orders: []OrderWire{{
			Asset: 0, IsBuy: true, Price: "60000.1", Size: "0.01",
			Type: OrderTypeWire{Limit: &LimitOrderType{Tif: TifGtc}},
		}},
		Grouping: GroupingNone,
	}

	connectionID, err := ActionHash(action, 1)
	require.NoError(t, err)

	d1, err := AgentDigest(connectionID, AgentSourceMainnet)
	require.NoError(t, err)
	d2, err := AgentDigest(connectionID, AgentSourceMainnet)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	other, err := ActionHash(action, 2)
	require.NoError(t, err)
	d3, err := AgentDigest(other, AgentSourceMainnet)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestSplitSignature(t *testing.T) {
	sig := make([]byte, 65)
	sig[0] = 0xab
	sig[32] = 0xcd
	sig[64] = 1

	split, err := SplitSignature(sig)
	require.NoError(t, err)
	assert.Equal(t, uint8(28), split.V, "recovery id 需转换为 27/28")
	assert.Equal(t, "0xab00000000000000000000000000000000000000000000000000000000000000", split.R)
	assert.Equal(t, "0xcd00000000000000000000000000000000000000000000000000000000000000", split.S)

	_, err = SplitSignature(sig[:64])
	assert.Error(t, err)
}
