package execution

import (
	"context"
	"encoding/json"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/hyperliquid"
)

// SessionProvider 负责获取一次性委托签名会话并返回其钱包。
type SessionProvider interface {
	Acquire(ctx context.Context, pkpPublicKey, delegateeKey string) (hyperliquid.Wallet, error)
}

// SessionProviderFunc 为函数式适配器。
type SessionProviderFunc func(ctx context.Context, pkpPublicKey, delegateeKey string) (hyperliquid.Wallet, error)

// Acquire 实现 SessionProvider。
func (f SessionProviderFunc) Acquire(ctx context.Context, pkpPublicKey, delegateeKey string) (hyperliquid.Wallet, error) {
	return f(ctx, pkpPublicKey, delegateeKey)
}

// OrderSubmitter 抽象交易所写操作，方便切换真实或模拟下单。
type OrderSubmitter interface {
	UpdateLeverage(ctx context.Context, coin string, leverage int, isCross bool) (json.RawMessage, error)
	PlaceOrder(ctx context.Context, action hyperliquid.OrderAction) (json.RawMessage, error)
}

// SubmitterFactory 以会话钱包构造下单客户端。
type SubmitterFactory func(wallet hyperliquid.Wallet) OrderSubmitter

// Result 为执行结果，Success 与 Fail 恰有一个非空。
type Result struct {
	Success *ability.ExecuteSuccess
	Fail    *ability.Fail
}
