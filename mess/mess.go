// Package mess manages the meal-provider entities: registration, discovery,
// menu upkeep. Attendance counters on the mess document belong to the
// reservation engine and are never written here.
package mess

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	nearbyRadiusMeters   = 2000
	extendedRadiusMeters = 5000
)

// Register handles POST /api/messes (owner).
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Name     string          `json:"name"`
		Address  string          `json:"address"`
		Location models.GeoPoint `json:"liveLocation"`
		Menu     models.Menu     `json:"menu"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.Address == "" || len(body.Location.Coordinates) != 2 {
		http.Error(w, "name, address and liveLocation are required", http.StatusBadRequest)
		return
	}
	body.Location.Type = "Point"

	m := models.Mess{
		MessID:    utils.GenerateID(),
		OwnerID:   ownerID,
		Name:      body.Name,
		Address:   body.Address,
		Location:  body.Location,
		Menu:      body.Menu,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.MessCollection.InsertOne(ctx, m); err != nil {
		http.Error(w, "Failed to register mess", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Mess registered successfully",
		"mess":    m,
	})
}

// OwnerMesses handles GET /api/owner/messes.
func OwnerMesses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.MessCollection.Find(ctx, bson.M{"ownerid": ownerID})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	messes := []models.Mess{}
	for cur.Next(ctx) {
		var m models.Mess
		if err := cur.Decode(&m); err == nil {
			messes = append(messes, m)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"messes": messes})
}

// Nearby handles GET /api/messes/nearby?lat=..&lng=..&wide=true using the
// 2dsphere index.
func Nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lat, okLat := utils.ParseFloat(r, "lat")
	lng, okLng := utils.ParseFloat(r, "lng")
	if !okLat || !okLng {
		http.Error(w, "Latitude and longitude required", http.StatusBadRequest)
		return
	}

	radius := nearbyRadiusMeters
	if r.URL.Query().Get("wide") == "true" {
		radius = extendedRadiusMeters
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.MessCollection.Find(ctx, bson.M{
		"livelocation": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radius,
			},
		},
	})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	messes := []models.Mess{}
	for cur.Next(ctx) {
		var m models.Mess
		if err := cur.Decode(&m); err == nil {
			messes = append(messes, m)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"messes": messes})
}

// ListAll handles GET /api/messes.
func ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.MessCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	messes := []models.Mess{}
	for cur.Next(ctx) {
		var m models.Mess
		if err := cur.Decode(&m); err == nil {
			messes = append(messes, m)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"messes": messes})
}

// Get handles GET /api/mess/:messId.
func Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	messID := ps.ByName("messId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Mess
	err := db.MessCollection.FindOne(ctx, bson.M{"messid": messID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"mess": m})
}

// Update handles PUT /api/mess/:messId (owner). Name, address and menu
// only; counters and location are managed elsewhere.
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")

	var body struct {
		Name    string       `json:"name"`
		Address string       `json:"address"`
		Menu    *models.Menu `json:"menu"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Mess
	err := db.MessCollection.FindOne(ctx, bson.M{"messid": messID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if m.OwnerID != ownerID {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	set := bson.M{}
	if body.Name != "" {
		set["name"] = body.Name
	}
	if body.Address != "" {
		set["address"] = body.Address
	}
	if body.Menu != nil {
		set["menu"] = body.Menu
	}
	if len(set) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	if _, err := db.MessCollection.UpdateOne(ctx, bson.M{"messid": messID}, bson.M{"$set": set}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Mess updated successfully"})
}

// Delete handles DELETE /api/mess/:messId (owner).
func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Mess
	err := db.MessCollection.FindOne(ctx, bson.M{"messid": messID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Mess not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if m.OwnerID != ownerID {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	if _, err := db.MessCollection.DeleteOne(ctx, bson.M{"messid": messID}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	// Enrollments pointing at a deleted mess are dead weight; drop them too.
	if _, err := db.EnrollmentCollection.DeleteMany(ctx, bson.M{"messid": messID}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Mess deleted successfully"})
}
