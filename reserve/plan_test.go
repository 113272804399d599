package reserve

import (
	"errors"
	"testing"
	"time"

	"mealsphere/models"
)

func existingAt(messID string, meal models.MealType) *models.Reservation {
	return &models.Reservation{
		ReservationID: "r1",
		UserID:        "u1",
		MessID:        messID,
		MealType:      meal,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestPlanReserve(t *testing.T) {
	tests := []struct {
		name     string
		existing *models.Reservation
		messID   string
		slot     models.MealType
		wantAct  action
		wantMeal models.MealType
		wantErr  error
	}{
		{
			name: "first reservation of the day creates",
			messID: "A", slot: models.MealDay,
			wantAct: actionCreate, wantMeal: models.MealDay,
		},
		{
			name:     "complementary slot at same mess upgrades to both",
			existing: existingAt("A", models.MealDay),
			messID:   "A", slot: models.MealNight,
			wantAct: actionUpgrade, wantMeal: models.MealBoth,
		},
		{
			name:     "night then day also upgrades to both",
			existing: existingAt("A", models.MealNight),
			messID:   "A", slot: models.MealDay,
			wantAct: actionUpgrade, wantMeal: models.MealBoth,
		},
		{
			name:     "repeating the held slot is rejected",
			existing: existingAt("A", models.MealDay),
			messID:   "A", slot: models.MealDay,
			wantErr: ErrSlotAlreadyReserved,
		},
		{
			name:     "both covers each single slot",
			existing: existingAt("A", models.MealBoth),
			messID:   "A", slot: models.MealNight,
			wantErr: ErrSlotAlreadyReserved,
		},
		{
			name:     "same slot at another mess is rejected",
			existing: existingAt("A", models.MealDay),
			messID:   "B", slot: models.MealDay,
			wantErr: ErrSlotReservedElsewhere,
		},
		{
			name:     "even the complementary slot at another mess is rejected",
			existing: existingAt("A", models.MealDay),
			messID:   "B", slot: models.MealNight,
			wantErr: ErrSlotReservedElsewhere,
		},
		{
			name:   "both cannot be requested directly",
			messID: "A", slot: models.MealBoth,
			wantErr: ErrInvalidSlot,
		},
		{
			name:   "unknown slot is rejected",
			messID: "A", slot: "brunch",
			wantErr: ErrInvalidSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planReserve(tt.existing, tt.messID, tt.slot)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.action != tt.wantAct || plan.result != tt.wantMeal {
				t.Fatalf("plan = {%v %v}, want {%v %v}", plan.action, plan.result, tt.wantAct, tt.wantMeal)
			}
		})
	}
}

func TestPlanCancel(t *testing.T) {
	tests := []struct {
		name      string
		meal      models.MealType
		slot      models.MealType
		wantDel   bool
		remaining models.MealType
		wantErr   error
	}{
		{name: "single-slot reservation is deleted", meal: models.MealDay, slot: models.MealDay, wantDel: true},
		{name: "both demotes to night when day cancelled", meal: models.MealBoth, slot: models.MealDay, remaining: models.MealNight},
		{name: "both demotes to day when night cancelled", meal: models.MealBoth, slot: models.MealNight, remaining: models.MealDay},
		{name: "cancelling a slot not held fails", meal: models.MealDay, slot: models.MealNight, wantErr: ErrNotFound},
		{name: "cancelling both directly is invalid", meal: models.MealBoth, slot: models.MealBoth, wantErr: ErrInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := *existingAt("A", tt.meal)
			plan, err := planCancel(res, tt.slot)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.deleteDoc != tt.wantDel {
				t.Fatalf("deleteDoc = %v, want %v", plan.deleteDoc, tt.wantDel)
			}
			if !tt.wantDel && plan.remaining != tt.remaining {
				t.Fatalf("remaining = %v, want %v", plan.remaining, tt.remaining)
			}
		})
	}
}

func TestMealTypeCovers(t *testing.T) {
	if !models.MealBoth.Covers(models.MealDay) || !models.MealBoth.Covers(models.MealNight) {
		t.Fatal("both should cover day and night")
	}
	if models.MealDay.Covers(models.MealNight) {
		t.Fatal("day should not cover night")
	}
	if models.MealDay.Other() != models.MealNight || models.MealNight.Other() != models.MealDay {
		t.Fatal("Other() should flip the slot")
	}
}
