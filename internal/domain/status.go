package domain

// StockStatus classifies a product by how many days of cover the current
// inventory represents.
type StockStatus int

const (
	StatusSeverelyOverstocked StockStatus = iota
	StatusOverstocked
	StatusNormal
	StatusFastMoving
	StatusStockoutRisk
	StatusNoSalesData
	StatusComputeError
)

var stockStatusLabels = map[StockStatus]string{
	StatusSeverelyOverstocked: "severely overstocked",
	StatusOverstocked:         "overstocked",
	StatusNormal:              "normal",
	StatusFastMoving:          "fast-moving",
	StatusStockoutRisk:        "stockout risk",
	StatusNoSalesData:         "no sales data",
	StatusComputeError:        "computation error",
}

func (s StockStatus) String() string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}
	return "unknown"
}
