// Package attendance is the read side: per-day attendance partitions for a
// mess and per-member history tallies. Reservations are ground truth for
// today; the ledger is the historical record.
package attendance

import (
	"mealsphere/models"
)

// MemberAttendance is one enrolled member's slot picture for today.
type MemberAttendance struct {
	EnrollmentID string `json:"enrollmentid"`
	UserID       string `json:"userid"`
	Name         string `json:"name,omitempty"`
	Day          bool   `json:"day"`
	Night        bool   `json:"night"`
}

// WalkIn is a reservation at this mess from someone with no membership here.
type WalkIn struct {
	ReservationID string          `json:"reservationid"`
	UserID        string          `json:"userid"`
	MealType      models.MealType `json:"mealType"`
}

// PartitionToday splits the mess's accepted members into attending and
// absent according to today's reservations at this mess, and lists walk-in
// reservations separately. A member whose reservation today is at a
// different mess simply has no reservation in the input and counts as
// absent here.
func PartitionToday(enrolled []models.Enrollment, reservations []models.Reservation) (attending, absent []MemberAttendance, walkIns []WalkIn) {
	byUser := make(map[string]models.Reservation, len(reservations))
	for _, res := range reservations {
		byUser[res.UserID] = res
	}

	memberIDs := make(map[string]bool, len(enrolled))
	attending = []MemberAttendance{}
	absent = []MemberAttendance{}
	for _, enr := range enrolled {
		memberIDs[enr.UserID] = true
		view := MemberAttendance{
			EnrollmentID: enr.EnrollmentID,
			UserID:       enr.UserID,
		}
		if res, ok := byUser[enr.UserID]; ok {
			view.Day = res.MealType.Covers(models.MealDay)
			view.Night = res.MealType.Covers(models.MealNight)
			attending = append(attending, view)
		} else {
			absent = append(absent, view)
		}
	}

	walkIns = []WalkIn{}
	for _, res := range reservations {
		if memberIDs[res.UserID] {
			continue
		}
		walkIns = append(walkIns, WalkIn{
			ReservationID: res.ReservationID,
			UserID:        res.UserID,
			MealType:      res.MealType,
		})
	}
	return attending, absent, walkIns
}

// HistorySummary is the tallied ledger for one member.
type HistorySummary struct {
	TotalDays   int `json:"totalDays"`
	PresentDays int `json:"presentDays"`
	AbsentDays  int `json:"absentDays"`
}

// Tally counts presence per ledger row: present means at least one slot
// attended, absent means a row exists with neither.
func Tally(records []models.AttendanceRecord) HistorySummary {
	s := HistorySummary{TotalDays: len(records)}
	for _, rec := range records {
		if rec.Present() {
			s.PresentDays++
		} else {
			s.AbsentDays++
		}
	}
	return s
}
