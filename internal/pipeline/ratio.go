package pipeline

import (
	"math"

	"github.com/haierht/sellthrough/internal/domain"
)

// ratioOverflowLimit caps the sell-through ratio. Ratios beyond it come from
// degenerate sales averages and are reported as a computation error rather
// than a number nobody can act on.
const ratioOverflowLimit = 1e15

// statusThresholds classify a ratio by days of cover, evaluated highest
// first. A ratio below every threshold means stock is about to run out.
var statusThresholds = []struct {
	min    float64
	status domain.StockStatus
}{
	{60, domain.StatusSeverelyOverstocked},
	{45, domain.StatusOverstocked},
	{30, domain.StatusNormal},
	{20, domain.StatusFastMoving},
}

// DailyAverage converts the four trailing weekly sales sums into a per-day
// average over the full 28-day span.
func DailyAverage(weeklySales map[string]float64) float64 {
	var total float64
	for _, label := range WeeklyLabels() {
		total += weeklySales[label]
	}
	return total / dailyAvgWindowDays
}

// ComputeRatio derives the sell-through ratio and status for one product.
// totalQty must be positive; rows without stock never reach the report.
func ComputeRatio(totalQty, dailyAvg float64) domain.RatioResult {
	if dailyAvg == 0 {
		return domain.RatioResult{Status: domain.StatusNoSalesData}
	}
	if totalQty > ratioOverflowLimit || dailyAvg > ratioOverflowLimit {
		return domain.RatioResult{DailyAvg: dailyAvg, Status: domain.StatusComputeError}
	}

	ratio := totalQty / dailyAvg
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio > ratioOverflowLimit {
		return domain.RatioResult{DailyAvg: dailyAvg, Status: domain.StatusComputeError}
	}

	return domain.RatioResult{DailyAvg: dailyAvg, Ratio: ratio, Status: classify(ratio)}
}

func classify(ratio float64) domain.StockStatus {
	for _, t := range statusThresholds {
		if ratio >= t.min {
			return t.status
		}
	}
	return domain.StatusStockoutRisk
}
