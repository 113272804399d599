package globals

import "os"

var (
	UserJwtSecret  = []byte(EnvOr("USER_JWT_SECRET", "user_dev_secret"))
	OwnerJwtSecret = []byte(EnvOr("MESS_JWT_SECRET", "owner_dev_secret"))

	// Shared key guarding the manual job-trigger endpoints.
	JobAPIKey = EnvOr("API_KEY_UPDATE_ATTENDANCE", "dev-job-key")
)

func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const OwnerIDKey ContextKey = "ownerId"
