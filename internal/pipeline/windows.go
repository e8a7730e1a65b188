package pipeline

import (
	"time"

	"github.com/haierht/sellthrough/internal/domain"
)

// Window labels, in report order.
const (
	WindowPreviousMonth = "previous_month"
	WindowWeek1         = "week1"
	WindowWeek2         = "week2"
	WindowWeek3         = "week3"
	WindowWeek4         = "week4"
)

// weeklyWindowCount * weeklyWindowDays is the denominator of the daily
// sales average.
const (
	weeklyWindowDays   = 7
	weeklyWindowCount  = 4
	dailyAvgWindowDays = weeklyWindowDays * weeklyWindowCount
)

// Windows derives the five sales windows for a run. All windows are half-open
// [Start, End) date ranges. The previous calendar month comes first, then
// four adjacent 7-day windows counting back from yesterday: week1 is the most
// recent week, week4 the oldest.
func Windows(runDate time.Time) []domain.SalesWindow {
	day := time.Date(runDate.Year(), runDate.Month(), runDate.Day(), 0, 0, 0, 0, runDate.Location())

	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	windows := []domain.SalesWindow{
		{Label: WindowPreviousMonth, Start: prevMonthStart, End: monthStart},
	}

	end := day // exclusive, so the latest covered day is yesterday
	for i, label := range WeeklyLabels() {
		start := day.AddDate(0, 0, -weeklyWindowDays*(i+1))
		windows = append(windows, domain.SalesWindow{Label: label, Start: start, End: end})
		end = start
	}
	return windows
}

// WeeklyLabels returns the labels of the four trailing weekly windows, most
// recent first.
func WeeklyLabels() []string {
	return []string{WindowWeek1, WindowWeek2, WindowWeek3, WindowWeek4}
}
