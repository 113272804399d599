package routes

import (
	"mealsphere/attendance"
	"mealsphere/auth"
	"mealsphere/enrollment"
	"mealsphere/jobs"
	"mealsphere/livecount"
	"mealsphere/mess"
	"mealsphere/middleware"
	"mealsphere/ratelim"
	"mealsphere/reserve"
	"mealsphere/utils"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/user/register", rateLimiter.Limit(auth.RegisterUser))
	router.POST("/api/auth/user/login", rateLimiter.Limit(auth.LoginUser))
	router.POST("/api/auth/owner/register", rateLimiter.Limit(auth.RegisterOwner))
	router.POST("/api/auth/owner/login", rateLimiter.Limit(auth.LoginOwner))
}

// Collection routes live under /api/messes, single-mess routes under
// /api/mess/:messId so static and wildcard segments never collide.
func AddMessRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/messes", rateLimiter.Limit(middleware.AuthenticateOwner(mess.Register)))
	router.GET("/api/messes", rateLimiter.Limit(mess.ListAll))
	router.GET("/api/messes/nearby", rateLimiter.Limit(middleware.Authenticate(mess.Nearby)))

	router.GET("/api/mess/:messId", mess.Get)
	router.PUT("/api/mess/:messId", rateLimiter.Limit(middleware.AuthenticateOwner(mess.Update)))
	router.DELETE("/api/mess/:messId", rateLimiter.Limit(middleware.AuthenticateOwner(mess.Delete)))

	router.POST("/api/mess/:messId/join", rateLimiter.Limit(middleware.Authenticate(enrollment.Join)))
	router.POST("/api/mess/:messId/verify-coupon", middleware.AuthenticateOwner(reserve.VerifyCoupon))
}

func AddEnrollmentRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/enrollment", middleware.Authenticate(enrollment.MyEnrollment))
	router.POST("/api/enrollment/attend", rateLimiter.Limit(middleware.Authenticate(enrollment.Attend)))
}

func AddOwnerRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/owner/messes", middleware.AuthenticateOwner(mess.OwnerMesses))
	router.GET("/api/owner/messes/:messId/members", middleware.AuthenticateOwner(enrollment.Members))
	router.PUT("/api/owner/enrollments/:enrollmentId/accept", rateLimiter.Limit(middleware.AuthenticateOwner(enrollment.Accept)))
	router.DELETE("/api/owner/enrollments/:enrollmentId/reject", rateLimiter.Limit(middleware.AuthenticateOwner(enrollment.Reject)))

	router.GET("/api/owner/messes/:messId/attendance/today", middleware.AuthenticateOwner(attendance.TodaysAttendance))
	router.GET("/api/owner/messes/:messId/attendance/history/:userId", middleware.AuthenticateOwner(attendance.History))
	router.GET("/api/owner/messes/:messId/attendance/history/:userId/pdf", rateLimiter.Limit(middleware.AuthenticateOwner(attendance.HistoryPDF)))
}

func AddReservationRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/reservations", rateLimiter.Limit(middleware.Authenticate(reserve.Reserve)))
	router.GET("/api/reservations/today", middleware.Authenticate(reserve.Today))
	router.DELETE("/api/reservation/:reservationId", rateLimiter.Limit(middleware.Authenticate(reserve.Cancel)))
	router.GET("/api/reservation/:reservationId/coupon", middleware.Authenticate(reserve.PrintCoupon))
}

func AddJobRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/jobs/generate-reservations", rateLimiter.Limit(jobs.TriggerSynthesize))
	router.POST("/api/jobs/purge-reservations", rateLimiter.Limit(jobs.TriggerPurge))
	router.POST("/api/jobs/reset-counters", rateLimiter.Limit(jobs.TriggerReset))
	router.POST("/api/jobs/expire-enrollments", rateLimiter.Limit(jobs.TriggerExpire))
	router.DELETE("/api/jobs/reservations", rateLimiter.Limit(jobs.DeleteAllReservations))
}

func AddLiveRoutes(router *httprouter.Router, hub *livecount.Hub) {
	router.GET("/ws/mess/:messId/attendance", middleware.AuthenticateOwner(livecount.Attach(hub)))
}

func AddUtilityRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.GET("/health", rateLimiter.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	}))
}

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, hub *livecount.Hub) {
	AddAuthRoutes(router, rateLimiter)
	AddMessRoutes(router, rateLimiter)
	AddEnrollmentRoutes(router, rateLimiter)
	AddOwnerRoutes(router, rateLimiter)
	AddReservationRoutes(router, rateLimiter)
	AddJobRoutes(router, rateLimiter)
	AddLiveRoutes(router, hub)
	AddUtilityRoutes(router, rateLimiter)
}
