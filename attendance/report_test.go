package attendance

import (
	"testing"
	"time"

	"mealsphere/models"
)

func enr(id, userID string) models.Enrollment {
	return models.Enrollment{EnrollmentID: id, UserID: userID, MessID: "mess-1", IsAccepted: true}
}

func res(id, userID string, meal models.MealType) models.Reservation {
	return models.Reservation{
		ReservationID: id,
		UserID:        userID,
		MessID:        "mess-1",
		MealType:      meal,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestPartitionToday(t *testing.T) {
	enrolled := []models.Enrollment{
		enr("e1", "alice"),
		enr("e2", "bob"),
		enr("e3", "carol"),
	}
	reservations := []models.Reservation{
		res("r1", "alice", models.MealBoth),
		res("r2", "carol", models.MealNight),
		res("r3", "dave", models.MealDay), // no enrollment here
	}

	attending, absent, walkIns := PartitionToday(enrolled, reservations)

	if len(attending) != 2 {
		t.Fatalf("expected 2 attending, got %d", len(attending))
	}
	if attending[0].UserID != "alice" || !attending[0].Day || !attending[0].Night {
		t.Fatalf("alice should attend both slots, got %+v", attending[0])
	}
	if attending[1].UserID != "carol" || attending[1].Day || !attending[1].Night {
		t.Fatalf("carol should attend night only, got %+v", attending[1])
	}

	if len(absent) != 1 || absent[0].UserID != "bob" {
		t.Fatalf("expected bob absent, got %+v", absent)
	}

	if len(walkIns) != 1 || walkIns[0].UserID != "dave" || walkIns[0].MealType != models.MealDay {
		t.Fatalf("expected dave as walk-in, got %+v", walkIns)
	}
}

func TestPartitionTodayEmptyInputs(t *testing.T) {
	attending, absent, walkIns := PartitionToday(nil, nil)
	if len(attending) != 0 || len(absent) != 0 || len(walkIns) != 0 {
		t.Fatal("expected empty partitions")
	}
}

func TestTally(t *testing.T) {
	day := func(d int, attDay, attNight bool) models.AttendanceRecord {
		return models.AttendanceRecord{
			EnrollmentID:  "e1",
			Date:          time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC),
			AttendedDay:   attDay,
			AttendedNight: attNight,
		}
	}

	records := []models.AttendanceRecord{
		day(1, true, true),
		day(2, false, true),
		day(3, true, false),
		day(4, false, false),
	}

	got := Tally(records)
	want := HistorySummary{TotalDays: 4, PresentDays: 3, AbsentDays: 1}
	if got != want {
		t.Fatalf("Tally = %+v, want %+v", got, want)
	}

	if empty := Tally(nil); empty != (HistorySummary{}) {
		t.Fatalf("Tally(nil) = %+v, want zero", empty)
	}
}
