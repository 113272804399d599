// Package dayclock normalizes instants onto business-day boundaries in one
// fixed reference timezone. Every place the system computes "today" must go
// through this package so a reservation made near midnight is keyed to the
// same day everywhere.
package dayclock

import (
	"log"
	"os"
	"strconv"
	"time"

	"mealsphere/models"
)

// The reference timezone is IST, where the messes operate. Override with
// REFERENCE_TZ for other deployments.
var zone = loadZone()

var (
	// Slot cutoff hours in the reference timezone. Reservation and
	// cancellation share the same cutoff per slot.
	DayCutoffHour   = envHour("DAY_CUTOFF_HOUR", 11)
	NightCutoffHour = envHour("NIGHT_CUTOFF_HOUR", 19)
)

func loadZone() *time.Location {
	name := os.Getenv("REFERENCE_TZ")
	if name == "" {
		name = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("dayclock: cannot load %q (%v), using fixed IST offset", name, err)
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

func envHour(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		log.Printf("dayclock: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return h
}

// Zone returns the reference timezone.
func Zone() *time.Location {
	return zone
}

// BusinessDay returns the start of t's calendar day in the reference
// timezone. This value keys reservations and attendance ledger rows.
func BusinessDay(t time.Time) time.Time {
	t = t.In(zone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, zone)
}

// Today is BusinessDay of the current wall clock.
func Today() time.Time {
	return BusinessDay(time.Now())
}

// DayRange returns the half-open interval [start, next midnight) of the
// business day containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := BusinessDay(t)
	return start, start.AddDate(0, 0, 1)
}

// Cutoff returns the instant after which the given slot can no longer be
// reserved or cancelled on the business day containing t.
func Cutoff(t time.Time, slot models.MealType) time.Time {
	day := BusinessDay(t)
	hour := DayCutoffHour
	if slot == models.MealNight {
		hour = NightCutoffHour
	}
	return day.Add(time.Duration(hour) * time.Hour)
}

// BeforeCutoff reports whether now is still inside the action window for the
// slot on now's own business day.
func BeforeCutoff(now time.Time, slot models.MealType) bool {
	return now.Before(Cutoff(now, slot))
}

// NextBoundary returns the next business-day boundary strictly after now,
// i.e. the next reference-timezone midnight. The nightly job scheduler
// sleeps until this instant.
func NextBoundary(now time.Time) time.Time {
	return BusinessDay(now).AddDate(0, 0, 1)
}
