package precheck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/hyperliquid"
)

var testDelegator = common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")

type mockInfo struct {
	meta    hyperliquid.Meta
	metaErr error
	mids    hyperliquid.AllMids
	midsErr error
	state   hyperliquid.ClearinghouseState
	calls   []string
}

func (m *mockInfo) Meta(ctx context.Context) (hyperliquid.Meta, error) {
	m.calls = append(m.calls, "Meta")
	return m.meta, m.metaErr
}

func (m *mockInfo) AllMids(ctx context.Context) (hyperliquid.AllMids, error) {
	m.calls = append(m.calls, "AllMids")
	return m.mids, m.midsErr
}

func (m *mockInfo) ClearinghouseState(ctx context.Context, user string) (hyperliquid.ClearinghouseState, error) {
	m.calls = append(m.calls, "ClearinghouseState")
	return m.state, nil
}

func baseInfo() *mockInfo {
	return &mockInfo{
		meta: hyperliquid.Meta{Universe: []hyperliquid.AssetInfo{
			{Name: "BTC", SzDecimals: 5, MaxLeverage: 50},
			{Name: "ETH", SzDecimals: 4, MaxLeverage: 25},
		}},
		mids:  hyperliquid.AllMids{"BTC": "60000", "ETH": "3000"},
		state: hyperliquid.ClearinghouseState{Withdrawable: "100"},
	}
}

func baseParams() ability.Params {
	return ability.Params{
		Coin:     "BTC",
		Side:     ability.SideBuy,
		Amount:   "0.01",
		Leverage: "10",
	}
}

func TestEvaluate_Succeeds(t *testing.T) {
	info := baseInfo()
	eval := NewEvaluator(info, nil)

	result, err := eval.Evaluate(context.Background(), baseParams(), testDelegator)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Fail != nil {
		t.Fatalf("expected success, got fail: %s", result.Fail.Error)
	}
	if result.Success == nil || result.Success.WithdrawableUSDC != 100 {
		t.Fatalf("expected withdrawableUSDC=100, got %+v", result.Success)
	}
}

func TestEvaluate_UnknownCoinShortCircuits(t *testing.T) {
	info := baseInfo()
	eval := NewEvaluator(info, nil)

	params := baseParams()
	params.Coin = "DOGE"

	result, err := eval.Evaluate(context.Background(), params, testDelegator)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Fail == nil || !strings.Contains(result.Fail.Error, "Coin 'DOGE' is not a valid asset") {
		t.Fatalf("expected unknown coin failure, got %+v", result)
	}
	if len(info.calls) != 1 || info.calls[0] != "Meta" {
		t.Fatalf("expected only Meta call, got %v", info.calls)
	}
}

func TestEvaluate_AmountBoundary(t *testing.T) {
	cases := []struct {
		amount string
		wantOK bool
	}{
		{"0.00001", true},   // 恰为最小数量
		{"0.000009", false}, // 低于最小数量
		{"0.000011", true},
	}

	for _, tc := range cases {
		info := baseInfo()
		eval := NewEvaluator(info, nil)

		params := baseParams()
		params.Amount = tc.amount

		result, err := eval.Evaluate(context.Background(), params, testDelegator)
		if err != nil {
			t.Fatalf("amount=%s: Evaluate returned error: %v", tc.amount, err)
		}

		gotOK := result.Success != nil
		if gotOK != tc.wantOK {
			t.Errorf("amount=%s: success=%v, want %v (fail=%+v)", tc.amount, gotOK, tc.wantOK, result.Fail)
		}
		if !tc.wantOK && !strings.Contains(result.Fail.Error, "less than minimum size") {
			t.Errorf("amount=%s: unexpected failure reason %q", tc.amount, result.Fail.Error)
		}
	}
}

func TestEvaluate_LeverageBoundary(t *testing.T) {
	cases := []struct {
		leverage string
		wantOK   bool
	}{
		{"50", true},
		{"51", false},
		{"1", true},
	}

	for _, tc := range cases {
		info := baseInfo()
		info.state.Withdrawable = "10000000"
		eval := NewEvaluator(info, nil)

		params := baseParams()
		params.Leverage = tc.leverage

		result, err := eval.Evaluate(context.Background(), params, testDelegator)
		if err != nil {
			t.Fatalf("leverage=%s: Evaluate returned error: %v", tc.leverage, err)
		}

		gotOK := result.Success != nil
		if gotOK != tc.wantOK {
			t.Errorf("leverage=%s: success=%v, want %v (fail=%+v)", tc.leverage, gotOK, tc.wantOK, result.Fail)
		}
		if !tc.wantOK && !strings.Contains(result.Fail.Error, "Max leverage is 50") {
			t.Errorf("leverage=%s: unexpected failure reason %q", tc.leverage, result.Fail.Error)
		}
	}
}

func TestEvaluate_MidPriceUnsupported(t *testing.T) {
	info := baseInfo()
	delete(info.mids, "BTC")
	eval := NewEvaluator(info, nil)

	result, err := eval.Evaluate(context.Background(), baseParams(), testDelegator)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Fail == nil || !strings.Contains(result.Fail.Error, "MidPrice of Coin BTC is not supported") {
		t.Fatalf("expected mid price failure, got %+v", result)
	}
}

func TestEvaluate_InsufficientBalance(t *testing.T) {
	info := baseInfo()
	info.state.Withdrawable = "50"
	eval := NewEvaluator(info, nil)

	result, err := eval.Evaluate(context.Background(), baseParams(), testDelegator)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result.Fail == nil {
		t.Fatalf("expected insufficient balance failure, got success %+v", result.Success)
	}
	// 失败文案需同时包含当前余额与预估所需保证金 (60000*0.01/10)*1.01=60.6。
	if !strings.Contains(result.Fail.Error, "50") || !strings.Contains(result.Fail.Error, "60.6") {
		t.Fatalf("failure reason missing values: %q", result.Fail.Error)
	}
}

func TestEvaluate_BalanceBoundary(t *testing.T) {
	cases := []struct {
		withdrawable string
		wantOK       bool
	}{
		{"60.6", true}, // 等于阈值视为充足，失败条件为严格小于
		{"60.59", false},
		{"60.61", true},
	}

	for _, tc := range cases {
		info := baseInfo()
		info.state.Withdrawable = tc.withdrawable
		eval := NewEvaluator(info, nil)

		result, err := eval.Evaluate(context.Background(), baseParams(), testDelegator)
		if err != nil {
			t.Fatalf("withdrawable=%s: Evaluate returned error: %v", tc.withdrawable, err)
		}

		gotOK := result.Success != nil
		if gotOK != tc.wantOK {
			t.Errorf("withdrawable=%s: success=%v, want %v", tc.withdrawable, gotOK, tc.wantOK)
		}
	}
}

func TestEvaluate_InfrastructureErrorPropagates(t *testing.T) {
	info := baseInfo()
	info.metaErr = errors.New("connection refused")
	eval := NewEvaluator(info, nil)

	_, err := eval.Evaluate(context.Background(), baseParams(), testDelegator)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected infrastructure error to propagate, got %v", err)
	}
}
