package reserve

import (
	"strings"
	"testing"
	"time"

	"mealsphere/models"
)

func TestCouponPayloadRoundTrip(t *testing.T) {
	res := models.Reservation{
		ReservationID: "res-123",
		UserID:        "user-456",
		MessID:        "mess-789",
		MealType:      models.MealDay,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	payload := couponPayload(res)
	id, err := verifyCouponPayload(payload)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if id != res.ReservationID {
		t.Fatalf("got reservation id %q, want %q", id, res.ReservationID)
	}
}

func TestCouponPayloadTamperDetected(t *testing.T) {
	res := models.Reservation{
		ReservationID: "res-123",
		UserID:        "user-456",
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	payload := couponPayload(res)
	forged := strings.Replace(payload, "user-456", "user-999", 1)

	if _, err := verifyCouponPayload(forged); err == nil {
		t.Fatal("expected tampered payload to fail verification")
	}
	if _, err := verifyCouponPayload("not|a|coupon"); err == nil {
		t.Fatal("expected malformed payload to fail verification")
	}
}
