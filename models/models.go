package models

import "time"

// MealType is the slot portion of a reservation.
type MealType string

const (
	MealDay   MealType = "day"
	MealNight MealType = "night"
	MealBoth  MealType = "both"
)

// Covers reports whether a reservation of this meal type already includes
// the given single slot.
func (m MealType) Covers(slot MealType) bool {
	return m == slot || m == MealBoth
}

// Other returns the complementary single slot.
func (m MealType) Other() MealType {
	if m == MealDay {
		return MealNight
	}
	return MealDay
}

// ValidSlot reports whether m is a reservable single slot. "both" is never
// requested directly; it only arises from upgrading an existing reservation.
func (m MealType) ValidSlot() bool {
	return m == MealDay || m == MealNight
}

type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [longitude, latitude]
}

type User struct {
	UserID    string    `json:"userid" bson:"userid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password,omitempty" bson:"password"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string    `json:"role" bson:"role"` // member, daily
	MessID    string    `json:"messid,omitempty" bson:"messid,omitempty"`
	Location  *GeoPoint `json:"livelocation,omitempty" bson:"livelocation,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type MessOwner struct {
	OwnerID   string    `json:"ownerid" bson:"ownerid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password,omitempty" bson:"password"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Dish struct {
	Name  string   `json:"name" bson:"name"`
	Price float64  `json:"price" bson:"price"`
	Items []string `json:"items,omitempty" bson:"items,omitempty"`
}

type Meal struct {
	Dishes []Dish `json:"dishes" bson:"dishes"`
}

type Menu struct {
	DayMeal   Meal `json:"dayMeal" bson:"dayMeal"`
	NightMeal Meal `json:"nightMeal" bson:"nightMeal"`
}

// Mess is a meal provider. The two attending counters are a denormalized
// cache of today's reservation counts; they are mutated only with atomic
// $inc by the reservation engine and recomputed nightly from reservations.
type Mess struct {
	MessID               string    `json:"messid" bson:"messid"`
	OwnerID              string    `json:"ownerid" bson:"ownerid"`
	Name                 string    `json:"name" bson:"name"`
	Address              string    `json:"address" bson:"address"`
	Location             GeoPoint  `json:"livelocation" bson:"livelocation"`
	Menu                 Menu      `json:"menu" bson:"menu"`
	AttendingTodayDay    int       `json:"attendingTodayDay" bson:"attendingTodayDay"`
	AttendingTodayNight  int       `json:"attendingTodayNight" bson:"attendingTodayNight"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
}

// Enrollment ties one user to one mess. A user holds at most one enrollment
// anywhere, pending or accepted.
type Enrollment struct {
	EnrollmentID string    `json:"enrollmentid" bson:"enrollmentid"`
	UserID       string    `json:"userid" bson:"userid"`
	MessID       string    `json:"messid" bson:"messid"`
	IsAccepted   bool      `json:"isAccepted" bson:"isAccepted"`
	JoinedAt     time.Time `json:"joinedAt" bson:"joinedAt"`
}

// AttendanceRecord is one ledger row: what an enrolled member did on one
// business day. Kept as its own collection keyed (enrollmentid, date) so the
// history can grow without bloating the enrollment document. Reservations
// remain the source of truth; these rows are a reporting projection.
type AttendanceRecord struct {
	EnrollmentID  string    `json:"enrollmentid" bson:"enrollmentid"`
	UserID        string    `json:"userid" bson:"userid"`
	MessID        string    `json:"messid" bson:"messid"`
	Date          time.Time `json:"date" bson:"date"`
	AttendedDay   bool      `json:"attendedDay" bson:"attendedDay"`
	AttendedNight bool      `json:"attendedNight" bson:"attendedNight"`
}

// Present reports whether the member showed up for at least one slot.
func (a AttendanceRecord) Present() bool {
	return a.AttendedDay || a.AttendedNight
}

// Reservation is the per-day booking record, at most one per user per
// business day across all messes.
type Reservation struct {
	ReservationID string    `json:"reservationid" bson:"reservationid"`
	UserID        string    `json:"userid" bson:"userid"`
	MessID        string    `json:"messid" bson:"messid"`
	MealType      MealType  `json:"mealType" bson:"mealType"`
	Date          time.Time `json:"date" bson:"date"`
	Synthetic     bool      `json:"synthetic,omitempty" bson:"synthetic,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
