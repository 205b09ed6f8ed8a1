package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/courtsched/docs"
	"github.com/Dosada05/courtsched/handlers"
	"github.com/Dosada05/courtsched/middleware"
	"github.com/Dosada05/courtsched/models"
)

type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	// AvailabilityLimiter throttles the public availability check. Nil disables throttling.
	AvailabilityLimiter *middleware.Limiter
	// GenerateLimiter throttles calls to the upstream scheduler per organizer. Nil disables throttling.
	GenerateLimiter *middleware.Limiter
	Gatherer        prometheus.Gatherer
}

type Handlers struct {
	Court     *handlers.CourtHandler
	Booking   *handlers.BookingHandler
	Schedule  *handlers.ScheduleHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.StashQueryToken)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	scheduleManagers := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/courts", func(r chi.Router) {
		r.Get("/", h.Court.ListCourts)
		r.Get("/{courtID}", h.Court.GetCourt)
		r.Get("/{courtID}/bookings", h.Court.ListCourtBookings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/", h.Court.CreateCourt)
		})
	})

	router.Route("/bookings", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.AvailabilityLimiter != nil {
				r.Use(middleware.RateLimit(opts.AvailabilityLimiter))
			}
			r.Get("/availability", h.Booking.CheckAvailability)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Booking.CreateBooking)
			r.Get("/{bookingID}", h.Booking.GetBooking)
			r.Put("/{bookingID}/cancel", h.Booking.CancelBooking)
		})
	})

	router.With(authenticate).Get("/users/me/bookings", h.Booking.ListMyBookings)

	router.Route("/schedules", func(r chi.Router) {
		r.Post("/evaluate", h.Schedule.EvaluateSchedule)
		r.Get("/{scheduleID}", h.Schedule.GetSchedule)
		r.Get("/{scheduleID}/calendar.ics", h.Schedule.GetScheduleCalendar)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scheduleManagers)
			if opts.GenerateLimiter != nil {
				r.With(middleware.RateLimit(opts.GenerateLimiter)).Post("/generate", h.Schedule.GenerateSchedule)
			} else {
				r.Post("/generate", h.Schedule.GenerateSchedule)
			}
			r.Post("/", h.Schedule.SaveSchedule)
		})
	})

	router.Get("/tournaments/{tournamentID}/schedules", h.Schedule.ListTournamentSchedules)

	router.With(middleware.AuthenticateWebSocket(opts.JWTSecret)).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
