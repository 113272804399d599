package reserve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSlotAlreadyReserved),
		errors.Is(err, ErrSlotReservedElsewhere),
		errors.Is(err, ErrInvalidSlot):
		return http.StatusBadRequest
	case errors.Is(err, ErrCutoffPassed), errors.Is(err, ErrNotToday):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Reserve handles POST /api/reservations.
func Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		MessID   string          `json:"messId"`
		MealType models.MealType `json:"mealType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if body.MessID == "" || body.MealType == "" {
		http.Error(w, "messId and mealType are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.MessCollection.FindOne(ctx, bson.M{"messid": body.MessID}).Err()
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	res, err := ReserveSlot(ctx, userID, body.MessID, body.MealType)
	if err != nil {
		utils.RespondWithError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":     "Mess reserved successfully",
		"reservation": res,
	})
}

// Cancel handles DELETE /api/reservation/:reservationId. The slot being
// released comes from the mealType query parameter.
func Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reservationID := ps.ByName("reservationId")
	slot := models.MealType(r.URL.Query().Get("mealType"))
	if reservationID == "" {
		http.Error(w, "Reservation ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := CancelSlot(ctx, reservationID, userID, slot); err != nil {
		utils.RespondWithError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":       "Reservation cancelled successfully",
		"reservationId": reservationID,
	})
}

// Today handles GET /api/reservations/today, returning the caller's current
// reservation joined with the mess it points at.
func Today(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := FindToday(ctx, userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if res == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message":      "No reservations found for today",
			"reservations": []any{},
		})
		return
	}

	var mess models.Mess
	if err := db.MessCollection.FindOne(ctx, bson.M{"messid": res.MessID}).Decode(&mess); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Reservations fetched successfully",
		"reservations": []utils.M{{
			"reservationId": res.ReservationID,
			"messId":        mess.MessID,
			"messName":      mess.Name,
			"address":       mess.Address,
			"menu":          mess.Menu,
			"mealType":      res.MealType,
			"date":          res.Date,
		}},
	})
}
