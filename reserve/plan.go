package reserve

import (
	"errors"

	"mealsphere/models"
)

var (
	// ErrSlotAlreadyReserved: the caller already holds this slot at this mess.
	ErrSlotAlreadyReserved = errors.New("slot already reserved")
	// ErrSlotReservedElsewhere: the caller holds today's reservation at a
	// different mess. One reservation per user per day, across all messes.
	ErrSlotReservedElsewhere = errors.New("slot already reserved at another mess")
	// ErrCutoffPassed: the slot's action window for today is over.
	ErrCutoffPassed = errors.New("cutoff passed for this meal slot")
	// ErrNotToday: only today's reservations can be cancelled.
	ErrNotToday = errors.New("only today's reservations can be cancelled")
	// ErrNotFound: no matching reservation owned by the caller.
	ErrNotFound = errors.New("reservation not found")
	// ErrInvalidSlot: the request named something other than day or night.
	ErrInvalidSlot = errors.New("mealType must be day or night")
)

type action int

const (
	actionCreate action = iota
	actionUpgrade
)

// reservePlan is the decision for a slot request: either create a fresh
// reservation or upgrade the existing one in place. Result is the meal type
// the stored document ends up with.
type reservePlan struct {
	action action
	result models.MealType
}

// planReserve applies the composition rules to a slot request given whatever
// reservation the user already holds today (nil if none). It never touches
// storage, so the full rule matrix is unit-testable.
func planReserve(existing *models.Reservation, messID string, slot models.MealType) (reservePlan, error) {
	if !slot.ValidSlot() {
		return reservePlan{}, ErrInvalidSlot
	}
	if existing == nil {
		return reservePlan{action: actionCreate, result: slot}, nil
	}
	if existing.MessID != messID {
		// Holding any booking at another mess today blocks this one, even
		// for the complementary slot.
		return reservePlan{}, ErrSlotReservedElsewhere
	}
	if existing.MealType.Covers(slot) {
		return reservePlan{}, ErrSlotAlreadyReserved
	}
	// The existing reservation holds the other single slot; adding this one
	// makes it both. "both" is only ever reached through this path.
	return reservePlan{action: actionUpgrade, result: models.MealBoth}, nil
}

// cancelPlan is the decision for cancelling one slot of a reservation:
// delete the document outright, or demote "both" to the slot that remains.
type cancelPlan struct {
	deleteDoc bool
	remaining models.MealType
}

func planCancel(res models.Reservation, slot models.MealType) (cancelPlan, error) {
	if !slot.ValidSlot() {
		return cancelPlan{}, ErrInvalidSlot
	}
	if !res.MealType.Covers(slot) {
		return cancelPlan{}, ErrNotFound
	}
	if res.MealType == models.MealBoth {
		return cancelPlan{deleteDoc: false, remaining: slot.Other()}, nil
	}
	return cancelPlan{deleteDoc: true}, nil
}
