package router

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"portal/backend/internal/auth"
	"portal/backend/internal/middleware"
	"portal/backend/internal/pkg/cache"
	"portal/backend/internal/repository/sheet/attendance"
	"portal/backend/internal/service/location"

	attendance_controller "portal/backend/internal/controller/http/v1/attendance"
	auth_controller "portal/backend/internal/controller/http/v1/auth"
	location_controller "portal/backend/internal/controller/http/v1/location"
)

type Router struct {
	auth           *auth.Auth
	directory      cache.Directory
	attendance     *attendance.Repository
	tracker        *location.Tracker
	geocoder       location.Geocoder
	allowedOrigins string
}

func NewRouter(
	a *auth.Auth,
	directory cache.Directory,
	attendanceRepo *attendance.Repository,
	tracker *location.Tracker,
	geocoder location.Geocoder,
	allowedOrigins string,
) *Router {
	return &Router{
		auth:           a,
		directory:      directory,
		attendance:     attendanceRepo,
		tracker:        tracker,
		geocoder:       geocoder,
		allowedOrigins: allowedOrigins,
	}
}

func (r *Router) Init() *gin.Engine {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(r.allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
	}))

	authController := auth_controller.NewController(r.directory, r.auth)
	attendanceController := attendance_controller.NewController(r.attendance, r.geocoder)
	locationController := location_controller.NewController(r.tracker, r.geocoder)

	api := engine.Group("/api/v1")
	{
		api.POST("/auth/sign-in", authController.SignIn)
	}

	protected := engine.Group("/api/v1")
	protected.Use(middleware.Authenticate(r.auth))
	{
		protected.POST("/attendance/check-in", attendanceController.CheckIn)
		protected.POST("/attendance/check-out", attendanceController.CheckOut)
		protected.POST("/attendance/leave", attendanceController.RequestLeave)
		protected.GET("/attendance/today", attendanceController.Today)
		protected.GET("/attendance/history", attendanceController.History)

		protected.POST("/location/log", locationController.Log)
	}

	return engine
}
