package server

import (
	"net/http"

	"petcare/internal/domain"
	"petcare/internal/middleware"
	"petcare/internal/modules/admin"
	"petcare/internal/modules/booking"
	"petcare/internal/modules/payment"
	jwtsvc "petcare/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the wired services the HTTP API is built from.
type Deps struct {
	DB          *gorm.DB
	JWT         *jwtsvc.Service
	Payments    *payment.Service
	Bookings    *booking.Service
	Admin       *admin.Service
	CORSOrigins []string
	Loggerf     func(format string, args ...interface{})

	// Health adds fields to the /health body.
	Health func() gin.H
}

func NewRouter(d Deps) *gin.Engine {
	paymentHandler := payment.NewHandler(d.Payments, d.Loggerf)
	bookingHandler := booking.NewHandler(d.Bookings)
	adminHandler := admin.NewHandler(d.Admin)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.ErrorLogger(), middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		body := gin.H{"status": "ok"}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})

	v1 := r.Group("/api/v1")
	{
		// public: card tokenization key and gateway notifications
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		{
			paymentHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			{
				adminHandler.RegisterRoutes(adminGroup)
			}
		}
	}
	return r
}
