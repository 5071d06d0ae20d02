package eligibility

import (
	"time"

	"github.com/ffx-assist/program-finder/internal/models"
)

const dateLayout = "2006-01-02"

// InSeason reports whether today falls inside at least one window.
// No windows means open year-round. The check is day-granular and
// inclusive at both endpoints: a window open 2024-06-01 through
// 2024-06-15 contains both of those days in full.
func InSeason(windows []models.SeasonalWindow, today time.Time) bool {
	if len(windows) == 0 {
		return true
	}

	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, w := range windows {
		open, err := time.Parse(dateLayout, w.OpenDate)
		if err != nil {
			continue
		}
		close, err := time.Parse(dateLayout, w.CloseDate)
		if err != nil {
			continue
		}
		if !day.Before(open) && !day.After(close) {
			return true
		}
	}
	return false
}

// CurrentWindow returns the first window containing today, for display
// of "open through" dates.
func CurrentWindow(windows []models.SeasonalWindow, today time.Time) (models.SeasonalWindow, bool) {
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, w := range windows {
		open, err := time.Parse(dateLayout, w.OpenDate)
		if err != nil {
			continue
		}
		close, err := time.Parse(dateLayout, w.CloseDate)
		if err != nil {
			continue
		}
		if !day.Before(open) && !day.After(close) {
			return w, true
		}
	}
	return models.SeasonalWindow{}, false
}
