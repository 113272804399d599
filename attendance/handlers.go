package attendance

import (
	"context"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/dayclock"
	"mealsphere/enrollment"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func acceptedEnrollments(ctx context.Context, messID string) ([]models.Enrollment, error) {
	cur, err := db.EnrollmentCollection.Find(ctx, bson.M{
		"messid":     messID,
		"isAccepted": true,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrollment
	for cur.Next(ctx) {
		var enr models.Enrollment
		if err := cur.Decode(&enr); err == nil {
			out = append(out, enr)
		}
	}
	return out, cur.Err()
}

func todaysReservations(ctx context.Context, messID string) ([]models.Reservation, error) {
	cur, err := db.ReservationCollection.Find(ctx, bson.M{
		"messid": messID,
		"date":   dayclock.Today(),
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Reservation
	for cur.Next(ctx) {
		var res models.Reservation
		if err := cur.Decode(&res); err == nil {
			out = append(out, res)
		}
	}
	return out, cur.Err()
}

func fillNames(ctx context.Context, members []MemberAttendance) {
	for i := range members {
		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"userid": members[i].UserID}).Decode(&user); err == nil {
			members[i].Name = user.Name
		}
	}
}

// TodaysAttendance handles GET /api/owner/messes/:messId/attendance/today.
func TodaysAttendance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, code, msg := enrollment.OwnedMess(ctx, messID, ownerID); code != 0 {
		http.Error(w, msg, code)
		return
	}

	enrolled, err := acceptedEnrollments(ctx, messID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	reservations, err := todaysReservations(ctx, messID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	attending, absent, walkIns := PartitionToday(enrolled, reservations)
	fillNames(ctx, attending)
	fillNames(ctx, absent)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"date":      dayclock.Today(),
		"attending": attending,
		"absent":    absent,
		"walkIns":   walkIns,
	})
}

// memberRecords loads the ledger for one (mess, user) pair, oldest first.
func memberRecords(ctx context.Context, messID, userID string) (*models.Enrollment, []models.AttendanceRecord, error) {
	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{
		"messid": messID,
		"userid": userID,
	}).Decode(&enr)
	if err != nil {
		return nil, nil, err
	}

	cur, err := db.AttendanceCollection.Find(ctx,
		bson.M{"enrollmentid": enr.EnrollmentID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)

	records := []models.AttendanceRecord{}
	for cur.Next(ctx) {
		var rec models.AttendanceRecord
		if err := cur.Decode(&rec); err == nil {
			records = append(records, rec)
		}
	}
	return &enr, records, cur.Err()
}

// History handles GET /api/owner/messes/:messId/attendance/history/:userId.
func History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")
	userID := ps.ByName("userId")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, code, msg := enrollment.OwnedMess(ctx, messID, ownerID); code != 0 {
		http.Error(w, msg, code)
		return
	}

	_, records, err := memberRecords(ctx, messID, userID)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Enrollment not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	summary := Tally(records)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"totalDays":   summary.TotalDays,
		"presentDays": summary.PresentDays,
		"absentDays":  summary.AbsentDays,
		"records":     records,
	})
}
