package ability

// PrecheckSuccess 为预检通过时的返回载荷。
type PrecheckSuccess struct {
	WithdrawableUSDC float64 `json:"withdrawableUSDC"`
}

// ExecuteSuccess 为下单成功时的返回载荷，Result 为交易所响应的序列化串。
type ExecuteSuccess struct {
	Result string `json:"result"`
}

// Fail 为两个阶段统一的失败载荷。
type Fail struct {
	Error string `json:"error"`
}
