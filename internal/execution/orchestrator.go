package execution

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/hyperliquid"
	"hyperliquid-perps/internal/numeric"
)

type infoReader interface {
	Meta(ctx context.Context) (hyperliquid.Meta, error)
	AllMids(ctx context.Context) (hyperliquid.AllMids, error)
}

// Orchestrator 驱动 execute 阶段：获取委托会话、设置杠杆并提交订单。
// 与预检不同，本阶段有副作用；杠杆更新与下单为两次独立网络调用，
// 后者失败不回滚前者。
type Orchestrator struct {
	sessions     SessionProvider
	newSubmitter SubmitterFactory
	info         infoReader
	logger       *zap.Logger
}

// NewOrchestrator 创建执行编排器。
func NewOrchestrator(sessions SessionProvider, factory SubmitterFactory, info infoReader, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		sessions:     sessions,
		newSubmitter: factory,
		info:         info,
		logger:       logger,
	}
}

const unknownErrorMessage = "Unknown error occurred"

// Execute 为 execute 阶段的对外入口。
// 所有异常（含 panic）都在此转换为 Fail 载荷，不向宿主抛出。
func (o *Orchestrator) Execute(ctx context.Context, params ability.Params, pkpPublicKey string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("execute 阶段发生 panic", zap.Any("panic", r))
			msg := fmt.Sprint(r)
			if msg == "" {
				msg = unknownErrorMessage
			}
			result = Result{Fail: &ability.Fail{Error: msg}}
		}
	}()

	result, err := o.execute(ctx, params, pkpPublicKey)
	if err != nil {
		o.logger.Error("execute 阶段失败", zap.String("coin", params.Coin), zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = unknownErrorMessage
		}
		return Result{Fail: &ability.Fail{Error: msg}}
	}
	return result
}

func (o *Orchestrator) execute(ctx context.Context, params ability.Params, pkpPublicKey string) (Result, error) {
	wallet, err := o.sessions.Acquire(ctx, pkpPublicKey, params.DelegateePrivateKey)
	if err != nil {
		return Result{}, err
	}
	submitter := o.newSubmitter(wallet)

	leverage, err := params.LeverageInt()
	if err != nil {
		return Result{}, err
	}

	// 先设杠杆：保证金要求由交易所在下单时按当前杠杆隐式校验。
	leverageResult, err := submitter.UpdateLeverage(ctx, params.Coin, leverage, false)
	if err != nil {
		return Result{}, err
	}
	o.logger.Info("杠杆设置完成",
		zap.String("coin", params.Coin),
		zap.Int("leverage", leverage),
		zap.ByteString("result", leverageResult),
	)

	// 元数据不跨调用复用，这里重新拉取并独立校验币种存在性。
	meta, err := o.info.Meta(ctx)
	if err != nil {
		return Result{}, err
	}
	assetIndex, asset, ok := meta.FindAsset(params.Coin)
	if !ok {
		return Result{Fail: &ability.Fail{
			Error: fmt.Sprintf("Coin '%s' is not a valid asset on Hyperliquid.", params.Coin),
		}}, nil
	}

	pxDecimals := numeric.PriceDecimals(asset.SzDecimals)

	mids, err := o.info.AllMids(ctx)
	if err != nil {
		return Result{}, err
	}
	mid, err := parseMid(mids, params.Coin)
	if err != nil {
		return Result{}, err
	}

	// 以中间价上下各让一个最小价位，构造可立即成交的限价单模拟市价单。
	tick := numeric.Tick(pxDecimals)
	isBuy := params.Side == ability.SideBuy
	var price decimal.Decimal
	if isBuy {
		price = mid.Add(tick)
	} else {
		price = mid.Sub(tick)
	}

	order := hyperliquid.OrderAction{
		Type: "order",
		Orders: []hyperliquid.OrderWire{{
			Asset:      assetIndex,
			IsBuy:      isBuy,
			Price:      price.String(),
			Size:       params.Amount,
			ReduceOnly: false,
			Type: hyperliquid.OrderTypeWire{
				Limit: &hyperliquid.LimitOrderType{Tif: hyperliquid.TifGtc},
			},
		}},
		Grouping: hyperliquid.GroupingNone,
	}

	raw, err := submitter.PlaceOrder(ctx, order)
	if err != nil {
		return Result{}, err
	}

	o.logger.Info("订单已提交",
		zap.String("coin", params.Coin),
		zap.Bool("is_buy", isBuy),
		zap.String("price", price.String()),
		zap.String("size", params.Amount),
	)

	return Result{Success: &ability.ExecuteSuccess{Result: string(raw)}}, nil
}

func parseMid(mids hyperliquid.AllMids, coin string) (decimal.Decimal, error) {
	midStr, ok := mids[coin]
	if !ok {
		return decimal.Zero, fmt.Errorf("midPrice for %s is not a number", coin)
	}
	mid, err := decimal.NewFromString(midStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("midPrice for %s is not a number", coin)
	}
	return mid, nil
}
