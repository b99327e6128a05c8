package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/config"
	"medslot/internal/domain"
	"medslot/internal/service"
)

type Handler struct {
	services       *service.Services
	logger         *zap.Logger
	config         *config.Config
	bookingLimiter *ipRateLimiter
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services:       services,
		logger:         logger,
		config:         config,
		bookingLimiter: newIPRateLimiter(config.RateLimit.BookingRPS, config.RateLimit.BookingBurst),
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		hospitals := api.Group("/hospitals")
		{
			hospitals.GET("", h.listHospitals)
			hospitals.GET("/:id", h.getHospital)
			hospitals.GET("/:id/departments", h.listDepartments)

			admin := hospitals.Group("", h.authMiddleware(), h.roleMiddleware(domain.UserRoleHospitalAdmin))
			{
				admin.POST("", h.createHospital)
				admin.POST("/:id/departments", h.createDepartment)
			}
		}

		doctors := api.Group("/doctors")
		{
			doctors.PUT("/me/profile", h.authMiddleware(), h.roleMiddleware(domain.UserRoleDoctor), h.upsertDoctorProfile)
			doctors.GET("/:id", h.getDoctorProfile)
		}

		availability := api.Group("/availability", h.authMiddleware(), h.roleMiddleware(domain.UserRoleDoctor))
		{
			availability.POST("", h.registerSlot)
			availability.GET("/me", h.getMySlots)
		}

		affiliations := api.Group("/affiliations")
		{
			affiliations.GET("", h.listAffiliations)
			affiliations.POST("", h.authMiddleware(), h.roleMiddleware(domain.UserRoleDoctor), h.createAffiliation)
		}

		api.GET("/search", h.searchDoctors)

		api.POST("/bookings",
			h.rateLimitMiddleware(h.bookingLimiter),
			h.authMiddleware(),
			h.roleMiddleware(domain.UserRolePatient),
			h.bookSlot,
		)

		appointments := api.Group("/appointments", h.authMiddleware())
		{
			appointments.GET("/me", h.roleMiddleware(domain.UserRolePatient), h.getMyAppointments)
			appointments.GET("/:id", h.getAppointment)
			appointments.GET("/:id/receipt", h.getAppointmentReceipt)
			appointments.POST("/:id/complete",
				h.roleMiddleware(domain.UserRoleDoctor, domain.UserRoleHospitalAdmin),
				h.completeAppointment,
			)
		}

		revenue := api.Group("/revenue", h.authMiddleware())
		{
			revenue.GET("/doctors/me", h.roleMiddleware(domain.UserRoleDoctor), h.getMyEarnings)

			hospital := revenue.Group("/hospitals", h.roleMiddleware(domain.UserRoleHospitalAdmin))
			{
				hospital.GET("/:id", h.getHospitalStats)
				hospital.GET("/:id/export", h.exportHospitalStats)
			}
		}
	}
}
