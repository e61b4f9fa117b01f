package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/transport/http/handler"
	"github.com/mediremind/api/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Medication   *handler.MedicationHandler
	Mood         *handler.MoodHandler
	Notification *handler.NotificationHandler
}

func NewRouter(logger *slog.Logger, h Handlers, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/verify", h.Auth.VerifySignup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/login/verify", h.Auth.VerifyLogin)
	auth.POST("/resend", h.Auth.Resend)

	authMW := middleware.Auth(jwtKey)

	me := r.Group("/me", authMW)
	me.GET("", h.User.Profile)
	me.GET("/streak", h.User.Streak)
	me.POST("/upgrade", h.User.Upgrade)

	meds := r.Group("/medications", authMW)
	meds.GET("", h.Medication.List)
	meds.POST("", h.Medication.Create)
	meds.PUT("/:id", h.Medication.Update)
	meds.DELETE("/:id", h.Medication.Delete)
	meds.GET("/today", h.Medication.Today)
	meds.POST("/:id/taken", h.Medication.MarkTaken)
	meds.GET("/history", h.Medication.History)

	mood := r.Group("/mood", authMW)
	mood.POST("", h.Mood.Log)
	mood.GET("/today", h.Mood.Today)

	notifications := r.Group("/notifications", authMW)
	notifications.GET("", h.Notification.List)
	notifications.POST("/:id/read", h.Notification.MarkRead)

	return r
}
