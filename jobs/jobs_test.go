package jobs

import (
	"math/rand"
	"os"
	"testing"

	"mealsphere/models"
)

func TestChooseSlotNeverProducesBoth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[models.MealType]bool{}

	for i := 0; i < 1000; i++ {
		slot := chooseSlot(rng)
		seen[slot] = true
		if slot == models.MealBoth {
			t.Fatal("synthesis must never create a both reservation directly")
		}
		if slot != "" && !slot.ValidSlot() {
			t.Fatalf("invalid synthetic slot %q", slot)
		}
	}

	// All three outcomes should occur over a long run.
	for _, want := range []models.MealType{models.MealDay, models.MealNight, ""} {
		if !seen[want] {
			t.Fatalf("outcome %q never produced", want)
		}
	}
}

func TestSynthModeDefaultsOff(t *testing.T) {
	os.Unsetenv("SYNTH_MODE")
	if got := SynthMode(); got != "off" {
		t.Fatalf("SynthMode() = %q, want off", got)
	}

	t.Setenv("SYNTH_MODE", "random")
	if got := SynthMode(); got != "random" {
		t.Fatalf("SynthMode() = %q, want random", got)
	}
}

func TestRetentionDays(t *testing.T) {
	os.Unsetenv("ENROLLMENT_RETENTION_DAYS")
	if got := RetentionDays(); got != 30 {
		t.Fatalf("default retention = %d, want 30", got)
	}

	t.Setenv("ENROLLMENT_RETENTION_DAYS", "45")
	if got := RetentionDays(); got != 45 {
		t.Fatalf("retention = %d, want 45", got)
	}

	t.Setenv("ENROLLMENT_RETENTION_DAYS", "not-a-number")
	if got := RetentionDays(); got != 30 {
		t.Fatalf("bad value should fall back to 30, got %d", got)
	}
}
