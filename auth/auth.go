// Package auth is the thin identity layer: signup and login for the two
// principal kinds, issuing the JWTs the middleware verifies. The reservation
// core trusts the IDs these tokens carry and does no credential work itself.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/globals"
	"mealsphere/middleware"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func signToken(id, name, role string, secret []byte) (string, error) {
	claims := &middleware.Claims{
		Name:   name,
		UserID: id,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func RegisterUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" || input.Name == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Err()
	if err == nil {
		http.Error(w, "User already exists", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := models.User{
		UserID:    utils.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashed),
		Phone:     input.Phone,
		Role:      "daily",
		CreatedAt: time.Now(),
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := signToken(user.UserID, user.Name, user.Role, globals.UserJwtSecret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "User created successfully",
		"token":   token,
		"userid":  user.UserID,
	})
}

func LoginUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stored models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&stored); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(input.Password)); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := signToken(stored.UserID, stored.Name, stored.Role, globals.UserJwtSecret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Login successful",
		"token":   token,
		"userid":  stored.UserID,
	})
}

func RegisterOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" || input.Name == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.OwnerCollection.FindOne(ctx, bson.M{"email": input.Email}).Err()
	if err == nil {
		http.Error(w, "Email already in use", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	owner := models.MessOwner{
		OwnerID:   utils.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashed),
		Phone:     input.Phone,
		CreatedAt: time.Now(),
	}
	if _, err := db.OwnerCollection.InsertOne(ctx, owner); err != nil {
		http.Error(w, "Failed to create owner", http.StatusInternalServerError)
		return
	}

	token, err := signToken(owner.OwnerID, owner.Name, "owner", globals.OwnerJwtSecret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Signup successful",
		"token":   token,
		"ownerid": owner.OwnerID,
	})
}

func LoginOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stored models.MessOwner
	if err := db.OwnerCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&stored); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(input.Password)); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := signToken(stored.OwnerID, stored.Name, "owner", globals.OwnerJwtSecret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Login successful",
		"token":   token,
		"ownerid": stored.OwnerID,
	})
}
