package hyperliquid

// AssetInfo 描述 universe 中单个永续币种的元数据。
type AssetInfo struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	MaxLeverage int    `json:"maxLeverage"`
}

// Meta 为交易所返回的市场元数据。
type Meta struct {
	Universe []AssetInfo `json:"universe"`
}

// FindAsset 按币种符号精确匹配，返回其在 universe 中的下标。
// 下标即下单时使用的 asset index。
func (m Meta) FindAsset(coin string) (int, AssetInfo, bool) {
	for i, a := range m.Universe {
		if a.Name == coin {
			return i, a, true
		}
	}
	return 0, AssetInfo{}, false
}

// AllMids 为币种到中间价字符串的映射，币种缺失表示不支持。
type AllMids map[string]string

// ClearinghouseState 为账户的清算所状态，这里只关心可提余额。
type ClearinghouseState struct {
	Withdrawable string `json:"withdrawable"`
}

// 订单相关的 wire 结构。字段顺序参与 action 哈希，不可调整。

// LimitOrderType 为限价单参数。
type LimitOrderType struct {
	Tif string `msgpack:"tif" json:"tif"`
}

// OrderTypeWire 为订单类型包装。
type OrderTypeWire struct {
	Limit *LimitOrderType `msgpack:"limit,omitempty" json:"limit,omitempty"`
}

// OrderWire 为单笔委托的 wire 形式。
type OrderWire struct {
	Asset      int           `msgpack:"a" json:"a"`
	IsBuy      bool          `msgpack:"b" json:"b"`
	Price      string        `msgpack:"p" json:"p"`
	Size       string        `msgpack:"s" json:"s"`
	ReduceOnly bool          `msgpack:"r" json:"r"`
	Type       OrderTypeWire `msgpack:"t" json:"t"`
}

// OrderAction 为下单 action。
type OrderAction struct {
	Type     string      `msgpack:"type" json:"type"`
	Orders   []OrderWire `msgpack:"orders" json:"orders"`
	Grouping string      `msgpack:"grouping" json:"grouping"`
}

// UpdateLeverageAction 为调整杠杆 action。
type UpdateLeverageAction struct {
	Type     string `msgpack:"type" json:"type"`
	Asset    int    `msgpack:"asset" json:"asset"`
	IsCross  bool   `msgpack:"isCross" json:"isCross"`
	Leverage int    `msgpack:"leverage" json:"leverage"`
}

const (
	// TifGtc 表示 good-til-cancel。
	TifGtc = "Gtc"
	// GroupingNone 表示不做订单分组。
	GroupingNone = "na"
)
