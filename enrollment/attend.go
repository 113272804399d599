package enrollment

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mealsphere/models"
	"mealsphere/reserve"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
)

// Attend handles POST /api/enrollment/attend: the enrolled member's shortcut
// for booking today's slot at their own mess. Semantically identical to a
// reservation there, including cross-mess exclusivity and cutoffs.
func Attend(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		MealType models.MealType `json:"mealType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	enr, err := FindAccepted(ctx, userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if enr == nil {
		http.Error(w, "You are not an accepted member of any mess", http.StatusForbidden)
		return
	}

	res, err := reserve.ReserveSlot(ctx, userID, enr.MessID, body.MealType)
	if err != nil {
		utils.RespondWithError(w, reserve.StatusFor(err), err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":     "Attendance confirmed for today",
		"reservation": res,
	})
}
