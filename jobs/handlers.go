package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/globals"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// requireKey checks the shared maintenance API key carried in the request
// body. These endpoints exist for operators and demo tooling; they run the
// exact same job functions as the scheduler.
func requireKey(w http.ResponseWriter, r *http.Request) bool {
	var body struct {
		APIKey string `json:"apikey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.APIKey != globals.JobAPIKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// TriggerSynthesize handles POST /api/jobs/generate-reservations.
func TriggerSynthesize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireKey(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if SynthMode() != "random" {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message": "Synthesis disabled (SYNTH_MODE=off)",
			"count":   0,
		})
		return
	}

	n, err := SynthesizeDailyReservations(ctx)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Reservations generated for today",
		"count":   n,
	})
}

// TriggerPurge handles POST /api/jobs/purge-reservations.
func TriggerPurge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireKey(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	n, err := PurgeStaleReservations(ctx)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Outdated reservations purged",
		"deletedCount": n,
	})
}

// TriggerReset handles POST /api/jobs/reset-counters.
func TriggerReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireKey(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := ResetDailyCounters(ctx); err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Mess counters recomputed"})
}

// TriggerExpire handles POST /api/jobs/expire-enrollments.
func TriggerExpire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireKey(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	n, err := ExpireStaleEnrollments(ctx)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "Stale enrollments expired",
		"deletedCount": n,
	})
}

// DeleteAllReservations handles DELETE /api/jobs/reservations, a demo-reset
// escape hatch.
func DeleteAllReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireKey(w, r) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	res, err := db.ReservationCollection.DeleteMany(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if err := ResetDailyCounters(ctx); err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "All reservations deleted successfully",
		"deletedCount": res.DeletedCount,
	})
}
