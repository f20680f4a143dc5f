/**
 * @description
 * HTTP routing for the Cegnal API using the go-chi/chi router. The session
 * guard wraps the whole tree to apply navigation redirect rules; JSON API
 * groups are additionally protected by RequireSession.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Zones      *ZoneHandler
	Payments   *PaymentHandler
	Profiles   *ProfileHandler
	Chat       *ChatHandler
	Onboarding *OnboardingHandler
}

// NewRouter creates the Chi router and registers all routes.
func NewRouter(h Handlers, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(SessionGuard(jwtSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Cegnal API is healthy"))
	})

	// Public auth endpoints.
	r.Post("/register", h.Auth.HandleRegister)
	r.Post("/login", h.Auth.HandleLogin)
	r.Post("/verify-otp", h.Auth.HandleVerifyOTP)
	r.Post("/resend-otp", h.Auth.HandleResendOTP)
	r.Post("/forgot-password", h.Auth.HandleForgotPassword)
	r.Post("/reset-password", h.Auth.HandleResetPassword)

	// Session-scoped endpoints.
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(jwtSecret))

		r.Post("/logout", h.Auth.HandleLogout)
		r.Post("/update-password", h.Auth.HandleUpdatePassword)

		r.Get("/user/zones", h.Zones.HandleListZones)
		r.Get("/zones/{zoneId}", h.Zones.HandleGetZone)
		r.Get("/zones/{zoneId}/access", h.Zones.HandleZoneAccess)
		r.Post("/chat/join/zone", h.Zones.HandleJoinZone)

		r.Post("/payment/initiate", h.Payments.HandleInitiate)
		r.Post("/payment/verify", h.Payments.HandleVerify)

		r.Get("/user/analyst/{id}", h.Profiles.HandleGetAnalyst)
		r.Get("/user/top-analyst", h.Profiles.HandleTopAnalysts)
		r.Get("/user/top-traders", h.Profiles.HandleTopTraders)

		r.Get("/user/onboarding", h.Onboarding.HandleGetState)
		r.Put("/user/onboarding", h.Onboarding.HandleApply)

		r.Get("/chat/{zoneId}/ws", h.Chat.HandleWebsocket)
		r.Get("/chat/{zoneId}/messages", h.Chat.HandleHistory)
	})

	return r
}
