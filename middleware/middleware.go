package middleware

import (
	"context"
	"fmt"
	"net/http"

	"mealsphere/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func parseBearer(r *http.Request, secret []byte) (*Claims, error) {
	tokenString := r.Header.Get("Authorization")
	if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
		return nil, fmt.Errorf("missing or malformed token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Authenticate guards customer endpoints and stores the user ID in context.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := parseBearer(r, globals.UserJwtSecret)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		next(w, r.WithContext(ctx), ps)
	}
}

// AuthenticateOwner guards mess-owner endpoints; owners sign with their own
// secret so a customer token can never act as an owner.
func AuthenticateOwner(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := parseBearer(r, globals.OwnerJwtSecret)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), globals.OwnerIDKey, claims.UserID)
		next(w, r.WithContext(ctx), ps)
	}
}

// ValidateUserJWT parses a raw "Bearer ..." header value outside the
// middleware chain (websocket upgrades, PDF downloads).
func ValidateUserJWT(tokenString string) (*Claims, error) {
	if len(tokenString) < 8 {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return globals.UserJwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
