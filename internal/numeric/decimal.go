package numeric

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MaxPriceDigits 为交易所全局的价格有效小数位上限，
	// 单个币种的价格小数位 = MaxPriceDigits - szDecimals。
	MaxPriceDigits = 6
)

// SlippageBuffer 为预检阶段的静态保证金缓冲（1%），
// 用于容忍 precheck 与 execute 之间的价格波动，并非实时滑点估计。
var SlippageBuffer = decimal.RequireFromString("1.01")

// ParsePositive 解析十进制字符串并要求其为正数。
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("解析十进制数 %q 失败: %w", s, err)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("数值 %q 必须大于0", s)
	}
	return d, nil
}

// MinSize 返回币种的最小可交易数量 10^(-szDecimals)。
func MinSize(szDecimals int) decimal.Decimal {
	return decimal.New(1, -int32(szDecimals))
}

// PriceDecimals 返回币种的价格小数位数。
func PriceDecimals(szDecimals int) int {
	return MaxPriceDigits - szDecimals
}

// Tick 返回给定价格小数位下的最小价格步长 10^(-pxDecimals)。
func Tick(pxDecimals int) decimal.Decimal {
	return decimal.New(1, -int32(pxDecimals))
}

// RequiredMargin 计算开仓所需的预估保证金：(mid * amount / leverage) * 1.01。
func RequiredMargin(mid, amount decimal.Decimal, leverage int) decimal.Decimal {
	return mid.Mul(amount).Div(decimal.NewFromInt(int64(leverage))).Mul(SlippageBuffer)
}
