// Package enrollment manages the membership relationship between a user and
// a mess: join requests, owner approval, and the enrolled member's "attend
// today" shortcut.
package enrollment

import (
	"context"
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

var ErrAlreadyEnrolled = errors.New("already enrolled in a mess")

// Create inserts a pending enrollment for the user. The unique index on
// userid makes the one-membership rule hold under concurrent joins.
func Create(ctx context.Context, userID, messID string) (*models.Enrollment, error) {
	enr := models.Enrollment{
		EnrollmentID: utils.GenerateID(),
		UserID:       userID,
		MessID:       messID,
		IsAccepted:   false,
		JoinedAt:     time.Now(),
	}
	if _, err := db.EnrollmentCollection.InsertOne(ctx, enr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	return &enr, nil
}

// FindAccepted returns the user's accepted enrollment, or nil.
func FindAccepted(ctx context.Context, userID string) (*models.Enrollment, error) {
	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{
		"userid":     userID,
		"isAccepted": true,
	}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

// OwnedMess loads the mess and checks the acting owner controls it.
func OwnedMess(ctx context.Context, messID, ownerID string) (*models.Mess, int, string) {
	var mess models.Mess
	err := db.MessCollection.FindOne(ctx, bson.M{"messid": messID}).Decode(&mess)
	if err == mongo.ErrNoDocuments {
		return nil, http.StatusNotFound, "Mess not found"
	}
	if err != nil {
		return nil, http.StatusInternalServerError, "Internal server error"
	}
	if mess.OwnerID != ownerID {
		return nil, http.StatusForbidden, "Unauthorized"
	}
	return &mess, 0, ""
}

// Join handles POST /api/mess/:messId/join.
func Join(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.MessCollection.FindOne(ctx, bson.M{"messid": messID}).Err()
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	enr, err := Create(ctx, userID, messID)
	if errors.Is(err, ErrAlreadyEnrolled) {
		http.Error(w, "Already enrolled in a mess", http.StatusBadRequest)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":    "Join request sent",
		"enrollment": enr,
	})
}

// Accept handles PUT /api/owner/enrollments/:enrollmentId/accept.
func Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	enrollmentID := ps.ByName("enrollmentId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{"enrollmentid": enrollmentID}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Enrollment not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if _, code, msg := OwnedMess(ctx, enr.MessID, ownerID); code != 0 {
		http.Error(w, msg, code)
		return
	}

	if _, err := db.EnrollmentCollection.UpdateOne(ctx,
		bson.M{"enrollmentid": enrollmentID},
		bson.M{"$set": bson.M{"isAccepted": true}},
	); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Mirror onto the user profile: accepted members carry their home mess.
	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": enr.UserID},
		bson.M{"$set": bson.M{"messid": enr.MessID, "role": "member"}},
	); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Member accepted successfully"})
}

// Reject handles DELETE /api/owner/enrollments/:enrollmentId/reject.
func Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	enrollmentID := ps.ByName("enrollmentId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{"enrollmentid": enrollmentID}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Enrollment not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if _, code, msg := OwnedMess(ctx, enr.MessID, ownerID); code != 0 {
		http.Error(w, msg, code)
		return
	}

	if _, err := db.EnrollmentCollection.DeleteOne(ctx, bson.M{"enrollmentid": enrollmentID}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Enrollment request rejected"})
}

type memberView struct {
	EnrollmentID string    `json:"enrollmentid"`
	UserID       string    `json:"userid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Members handles GET /api/owner/messes/:messId/members, listing accepted
// members and pending requests with user identity joined in.
func Members(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, code, msg := OwnedMess(ctx, messID, ownerID); code != 0 {
		http.Error(w, msg, code)
		return
	}

	accepted, err := listMembers(ctx, messID, true)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	pending, err := listMembers(ctx, messID, false)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"acceptedMembers": accepted,
		"pendingRequests": pending,
	})
}

func listMembers(ctx context.Context, messID string, accepted bool) ([]memberView, error) {
	cur, err := db.EnrollmentCollection.Find(ctx, bson.M{
		"messid":     messID,
		"isAccepted": accepted,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	views := []memberView{}
	for cur.Next(ctx) {
		var enr models.Enrollment
		if err := cur.Decode(&enr); err != nil {
			continue
		}
		view := memberView{
			EnrollmentID: enr.EnrollmentID,
			UserID:       enr.UserID,
			JoinedAt:     enr.JoinedAt,
		}
		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"userid": enr.UserID}).Decode(&user); err == nil {
			view.Name = user.Name
			view.Email = user.Email
		}
		views = append(views, view)
	}
	return views, cur.Err()
}

// MyEnrollment handles GET /api/enrollment, the user's own membership with
// the mess joined in.
func MyEnrollment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "User is not enrolled in any mess", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var mess models.Mess
	if err := db.MessCollection.FindOne(ctx, bson.M{"messid": enr.MessID}).Decode(&mess); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !enr.IsAccepted {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message":    "Request not accepted yet",
			"enrollment": enr,
			"mess":       mess,
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"enrollment": enr,
		"mess":       mess,
	})
}
