package utils

import (
	"net/http"
	"strconv"
	"strings"

	"mealsphere/globals"

	"github.com/google/uuid"
)

// GenerateID returns a fresh opaque identifier.
func GenerateID() string {
	return uuid.New().String()
}

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	userID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		return ""
	}
	return userID
}

func GetOwnerIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	ownerID, ok := ctx.Value(globals.OwnerIDKey).(string)
	if !ok || ownerID == "" {
		return ""
	}
	return ownerID
}

// ParseFloat pulls a float query parameter, returning ok=false when absent
// or malformed.
func ParseFloat(r *http.Request, key string) (float64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
