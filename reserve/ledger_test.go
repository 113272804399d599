package reserve

import (
	"testing"

	"mealsphere/models"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCounterField(t *testing.T) {
	if got := counterField(models.MealDay); got != "attendingTodayDay" {
		t.Fatalf("day slot maps to %q", got)
	}
	if got := counterField(models.MealNight); got != "attendingTodayNight" {
		t.Fatalf("night slot maps to %q", got)
	}
}

func TestLedgerUpdateTouchesOnlyItsOwnSlot(t *testing.T) {
	upd := ledgerUpdate("u1", "m1", models.MealDay, true)

	set := upd["$set"].(bson.M)
	if set["attendedDay"] != true {
		t.Fatal("reserving day should set attendedDay")
	}
	if _, ok := set["attendedNight"]; ok {
		t.Fatal("reserving day must not touch attendedNight on update")
	}

	onInsert := upd["$setOnInsert"].(bson.M)
	if onInsert["attendedNight"] != false {
		t.Fatal("fresh rows should seed the other slot false")
	}
	if onInsert["userid"] != "u1" || onInsert["messid"] != "m1" {
		t.Fatal("fresh rows should carry user and mess ids")
	}
}

func TestLedgerUpdateCancelClearsOnlyItsOwnFlag(t *testing.T) {
	upd := ledgerUpdate("u1", "m1", models.MealNight, false)

	set := upd["$set"].(bson.M)
	if set["attendedNight"] != false {
		t.Fatal("cancelling night should clear attendedNight")
	}
	if _, ok := set["attendedDay"]; ok {
		t.Fatal("cancelling night must leave attendedDay alone")
	}
}
