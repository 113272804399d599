package dayclock

import (
	"testing"
	"time"

	"mealsphere/models"
)

func TestBusinessDayNormalizesToISTMidnight(t *testing.T) {
	// 2026-03-09 20:00 UTC is already 2026-03-10 01:30 in IST.
	instant := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	day := BusinessDay(instant)

	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 {
		t.Fatalf("expected midnight, got %v", day)
	}
	if day.Day() != 10 {
		t.Fatalf("expected IST date 10, got %v", day)
	}
	if day.Location() != Zone() {
		t.Fatalf("expected reference zone, got %v", day.Location())
	}
}

func TestBusinessDayIsStableAcrossRepresentations(t *testing.T) {
	ist := time.Date(2026, 3, 10, 1, 30, 0, 0, Zone())
	utc := ist.UTC()

	if !BusinessDay(ist).Equal(BusinessDay(utc)) {
		t.Fatalf("same instant normalized to different days: %v vs %v",
			BusinessDay(ist), BusinessDay(utc))
	}
}

func TestDayRangeIsHalfOpenDay(t *testing.T) {
	instant := time.Date(2026, 3, 10, 15, 4, 5, 0, Zone())
	start, end := DayRange(instant)

	if !start.Equal(BusinessDay(instant)) {
		t.Fatalf("range start %v != business day %v", start, BusinessDay(instant))
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Fatalf("expected 24h range, got %v", got)
	}
}

func TestCutoffPolicy(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, Zone())

	tests := []struct {
		name   string
		now    time.Time
		slot   models.MealType
		before bool
	}{
		{"day slot well before cutoff", day.Add(8 * time.Hour), models.MealDay, true},
		{"day slot at cutoff", day.Add(time.Duration(DayCutoffHour) * time.Hour), models.MealDay, false},
		{"day slot after cutoff", day.Add(time.Duration(DayCutoffHour)*time.Hour + time.Minute), models.MealDay, false},
		{"night slot before cutoff", day.Add(time.Duration(NightCutoffHour)*time.Hour - time.Minute), models.MealNight, true},
		{"night slot after cutoff", day.Add(23 * time.Hour), models.MealNight, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BeforeCutoff(tt.now, tt.slot); got != tt.before {
				t.Fatalf("BeforeCutoff(%v, %s) = %v, want %v", tt.now, tt.slot, got, tt.before)
			}
		})
	}
}

func TestNextBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 22, 15, 0, 0, Zone())
	next := NextBoundary(now)

	want := time.Date(2026, 3, 11, 0, 0, 0, 0, Zone())
	if !next.Equal(want) {
		t.Fatalf("NextBoundary = %v, want %v", next, want)
	}

	// At an exact boundary the next one is a full day later.
	atMidnight := time.Date(2026, 3, 11, 0, 0, 0, 0, Zone())
	if got := NextBoundary(atMidnight); !got.Equal(atMidnight.AddDate(0, 0, 1)) {
		t.Fatalf("NextBoundary at midnight = %v", got)
	}
}
