package ability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// 已知错误码，供宿主侧做分类处理。
const (
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
)

var (
	amountPattern   = regexp.MustCompile(`^\d*\.?\d+$`)
	leveragePattern = regexp.MustCompile(`^[1-9]\d*$`)
)

// Params 为单次能力调用的入参，precheck 与 execute 共用。
// delegateePrivateKey 仅在 execute 阶段使用。
type Params struct {
	Coin                string `json:"coin"`
	Side                Side   `json:"side"`
	Amount              string `json:"amount"`
	Leverage            string `json:"leverage"`
	DelegateePrivateKey string `json:"delegateePrivateKey"`
}

// Validate 校验参数格式，宿主理应已做过同样的校验，这里兜底一次。
func (p Params) Validate() error {
	var err error

	if strings.TrimSpace(p.Coin) == "" {
		err = multierr.Append(err, errors.New("coin 不能为空"))
	}
	if p.Side != SideBuy && p.Side != SideSell {
		err = multierr.Append(err, fmt.Errorf("side 必须为 buy 或 sell，收到 %q", p.Side))
	}
	if !amountPattern.MatchString(p.Amount) {
		err = multierr.Append(err, fmt.Errorf("amount 格式非法: %q", p.Amount))
	} else if v, parseErr := strconv.ParseFloat(p.Amount, 64); parseErr != nil || v <= 0 {
		err = multierr.Append(err, fmt.Errorf("amount 必须大于0: %q", p.Amount))
	}
	if !leveragePattern.MatchString(p.Leverage) {
		err = multierr.Append(err, fmt.Errorf("leverage 必须为正整数字符串: %q", p.Leverage))
	}

	if err != nil {
		return fmt.Errorf("参数校验失败: %w", err)
	}
	return nil
}

// LeverageInt 返回整数形式的杠杆倍数，调用前应先通过 Validate。
func (p Params) LeverageInt() (int, error) {
	v, err := strconv.Atoi(p.Leverage)
	if err != nil {
		return 0, fmt.Errorf("解析 leverage 失败: %w", err)
	}
	return v, nil
}

// Redacted 返回剔除私钥后的副本，用于日志与审计。
func (p Params) Redacted() Params {
	p.DelegateePrivateKey = ""
	return p
}
