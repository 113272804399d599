package reserve

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mealsphere/db"
	"mealsphere/dayclock"
	"mealsphere/globals"
	"mealsphere/middleware"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

var couponSecret = []byte(globals.EnvOr("COUPON_HMAC_SECRET", "coupon_dev_secret"))

// couponPayload builds the signed QR content:
// reservationID|userID|YYYY-MM-DD|signature
func couponPayload(res models.Reservation) string {
	data := fmt.Sprintf("%s|%s|%s", res.ReservationID, res.UserID, res.Date.Format("2006-01-02"))
	h := hmac.New(sha256.New, couponSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// verifyCouponPayload checks the signature and returns the reservation ID.
func verifyCouponPayload(payload string) (string, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return "", fmt.Errorf("malformed coupon payload")
	}
	data := strings.Join(parts[:3], "|")
	h := hmac.New(sha256.New, couponSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(parts[3])) {
		return "", fmt.Errorf("invalid coupon signature")
	}
	return parts[0], nil
}

// PrintCoupon handles GET /api/reservation/:reservationId/coupon and
// returns a printable PDF with a signed QR code the mess owner scans at the
// counter.
func PrintCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, err := middleware.ValidateUserJWT(r.Header.Get("Authorization"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reservationID := ps.ByName("reservationId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var res models.Reservation
	if err := db.ReservationCollection.FindOne(ctx, bson.M{
		"reservationid": reservationID,
		"userid":        claims.UserID,
	}).Decode(&res); err != nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}

	var mess models.Mess
	if err := db.MessCollection.FindOne(ctx, bson.M{"messid": res.MessID}).Decode(&mess); err != nil {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	}

	qrPNG, err := qrcode.Encode(couponPayload(res), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Meal Coupon")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Mess: %s", mess.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", claims.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Meal: %s", res.MealType))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", res.Date.Format("02 Jan 2006")))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=coupon-"+res.ReservationID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// VerifyCoupon handles POST /api/mess/:messId/verify-coupon: the owner's
// scanner posts the QR payload and learns whether it matches a live
// reservation at this mess for today.
func VerifyCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	messID := ps.ByName("messId")
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Payload == "" {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	reservationID, err := verifyCouponPayload(body.Payload)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": false, "reason": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := db.MessCollection.FindOne(ctx, bson.M{
		"messid":  messID,
		"ownerid": ownerID,
	}).Err(); err != nil {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	}

	var res models.Reservation
	if err := db.ReservationCollection.FindOne(ctx, bson.M{
		"reservationid": reservationID,
		"messid":        messID,
	}).Decode(&res); err != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": false, "reason": "no matching reservation"})
		return
	}
	if !res.Date.Equal(dayclock.Today()) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": false, "reason": "reservation is not for today"})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"valid":    true,
		"mealType": res.MealType,
		"userId":   res.UserID,
		"date":     res.Date,
	})
}
