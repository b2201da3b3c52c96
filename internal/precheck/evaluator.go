package precheck

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/hyperliquid"
	"hyperliquid-perps/internal/numeric"
)

type infoReader interface {
	Meta(ctx context.Context) (hyperliquid.Meta, error)
	AllMids(ctx context.Context) (hyperliquid.AllMids, error)
	ClearinghouseState(ctx context.Context, user string) (hyperliquid.ClearinghouseState, error)
}

// Evaluator 对请求做只读的可行性预检，不产生任何交易所侧状态。
// 基础设施错误直接以 error 返回，由宿主决定如何呈现；
// 业务校验失败以 Fail 载荷返回，二者不混用。
type Evaluator struct {
	info   infoReader
	logger *zap.Logger
}

// NewEvaluator 创建预检器。
func NewEvaluator(info infoReader, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{info: info, logger: logger}
}

// Result 为预检结果，Success 与 Fail 恰有一个非空。
type Result struct {
	Success *ability.PrecheckSuccess
	Fail    *ability.Fail
}

func failf(format string, args ...any) Result {
	return Result{Fail: &ability.Fail{Error: fmt.Sprintf(format, args...)}}
}

// Evaluate 按序校验：币种存在 → 数量下限 → 杠杆上限 → 余额充足，
// 任一失败立即短路返回。
func (e *Evaluator) Evaluate(ctx context.Context, params ability.Params, delegator common.Address) (Result, error) {
	meta, err := e.info.Meta(ctx)
	if err != nil {
		return Result{}, err
	}

	_, asset, ok := meta.FindAsset(params.Coin)
	if !ok {
		return failf("Coin '%s' is not a valid asset on Hyperliquid.", params.Coin), nil
	}

	amount, err := numeric.ParsePositive(params.Amount)
	if err != nil {
		return Result{}, err
	}

	minSize := numeric.MinSize(asset.SzDecimals)
	if amount.LessThan(minSize) {
		return failf("Amount %s is less than minimum size %s for coin %s.",
			params.Amount, minSize, params.Coin), nil
	}

	leverage, err := params.LeverageInt()
	if err != nil {
		return Result{}, err
	}
	if leverage > asset.MaxLeverage {
		return failf("Leverage %s is not allowed for coin %s. Max leverage is %d.",
			params.Leverage, params.Coin, asset.MaxLeverage), nil
	}

	state, err := e.info.ClearinghouseState(ctx, delegator.Hex())
	if err != nil {
		return Result{}, err
	}
	withdrawable, err := decimal.NewFromString(state.Withdrawable)
	if err != nil {
		return Result{}, fmt.Errorf("解析可提余额 %q 失败: %w", state.Withdrawable, err)
	}

	mids, err := e.info.AllMids(ctx)
	if err != nil {
		return Result{}, err
	}
	midStr, ok := mids[params.Coin]
	if !ok {
		return failf("MidPrice of Coin %s is not supported.", params.Coin), nil
	}
	mid, err := decimal.NewFromString(midStr)
	if err != nil {
		return Result{}, fmt.Errorf("解析中间价 %q 失败: %w", midStr, err)
	}

	e.logger.Debug("预检读取完成",
		zap.String("coin", params.Coin),
		zap.String("mid_price", mid.String()),
		zap.String("withdrawable", withdrawable.String()),
	)

	required := numeric.RequiredMargin(mid, amount, leverage)
	if withdrawable.LessThan(required) {
		return failf("Insufficient withdrawable USDC balance %s to open position requiring approximately %s USDC.",
			withdrawable, required), nil
	}

	return Result{Success: &ability.PrecheckSuccess{
		WithdrawableUSDC: withdrawable.InexactFloat64(),
	}}, nil
}
