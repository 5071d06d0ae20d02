package eligibility

import (
	"testing"
	"time"

	"github.com/ffx-assist/program-finder/internal/models"
)

func window(open, close string) models.SeasonalWindow {
	return models.SeasonalWindow{OpenDate: open, CloseDate: close}
}

func TestInSeason_NoWindowsIsYearRound(t *testing.T) {
	if !InSeason(nil, testToday) {
		t.Fatal("a program without windows must be open year-round")
	}
}

func TestInSeason_CloseDateIsInclusive(t *testing.T) {
	windows := []models.SeasonalWindow{window("2026-06-01", "2026-06-15")}

	onClose := time.Date(2026, 6, 15, 23, 30, 0, 0, time.UTC)
	if !InSeason(windows, onClose) {
		t.Fatal("the close date itself must still count as open")
	}

	dayAfter := time.Date(2026, 6, 16, 0, 0, 1, 0, time.UTC)
	if InSeason(windows, dayAfter) {
		t.Fatal("the day after the close date must be closed")
	}
}

func TestInSeason_OpenDateIsInclusive(t *testing.T) {
	windows := []models.SeasonalWindow{window("2026-06-01", "2026-06-15")}

	onOpen := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if !InSeason(windows, onOpen) {
		t.Fatal("the open date itself must count as open")
	}

	dayBefore := time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC)
	if InSeason(windows, dayBefore) {
		t.Fatal("the day before the open date must be closed")
	}
}

func TestInSeason_AnyWindowSuffices(t *testing.T) {
	windows := []models.SeasonalWindow{
		window("2026-01-01", "2026-03-31"),
		window("2026-10-01", "2026-12-31"),
	}

	if !InSeason(windows, time.Date(2026, 11, 5, 8, 0, 0, 0, time.UTC)) {
		t.Fatal("a day inside the second window must be open")
	}
	if InSeason(windows, time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatal("a day between windows must be closed")
	}
}

func TestCurrentWindow_ReturnsContainingWindow(t *testing.T) {
	windows := []models.SeasonalWindow{
		window("2026-01-01", "2026-03-31"),
		window("2026-10-01", "2026-12-31"),
	}

	w, ok := CurrentWindow(windows, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected a containing window")
	}
	if w.CloseDate != "2026-12-31" {
		t.Fatalf("expected the October window, got close date %s", w.CloseDate)
	}

	if _, ok := CurrentWindow(windows, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatal("expected no window in July")
	}
}

func TestMatches_OutOfSeasonRejects(t *testing.T) {
	p := testProgram("fan-care")
	p.SeasonalWindows = []models.SeasonalWindow{window("2026-06-01", "2026-08-15")}

	if Matches(p, AnswerSet{}, testToday) {
		t.Fatal("expected rejection: testToday is past the close date")
	}

	inSeason := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	if !Matches(p, AnswerSet{}, inSeason) {
		t.Fatal("expected match inside the window")
	}
}
