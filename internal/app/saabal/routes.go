package saabal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	advertisementshandler "github.com/saabal/saabal-api/internal/http/handlers/advertisements"
	authhandler "github.com/saabal/saabal-api/internal/http/handlers/auth"
	categorieshandler "github.com/saabal/saabal-api/internal/http/handlers/categories"
	editorshandler "github.com/saabal/saabal-api/internal/http/handlers/editors"
	lectureshandler "github.com/saabal/saabal-api/internal/http/handlers/lectures"
	newslettershandler "github.com/saabal/saabal-api/internal/http/handlers/newsletters"
	offershandler "github.com/saabal/saabal-api/internal/http/handlers/offers"
	paymentshandler "github.com/saabal/saabal-api/internal/http/handlers/payments"
	subscriptionshandler "github.com/saabal/saabal-api/internal/http/handlers/subscriptions"
	usershandler "github.com/saabal/saabal-api/internal/http/handlers/users"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/lib/jwt"
	"github.com/saabal/saabal-api/internal/models"
)

// Services groups the application services handed to the router.
type Services struct {
	Auth           authhandler.Service
	Users          usershandler.Service
	Subscriptions  subscriptionshandler.Service
	Editors        editorshandler.Service
	Newsletters    newslettershandler.Service
	Categories     categorieshandler.Service
	Offers         offershandler.Service
	Lectures       lectureshandler.Service
	Advertisements advertisementshandler.Service
	Payments       paymentshandler.Service
}

// RegisterRoutes mounts every route of the API.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, users middlewarectx.UserLoader, services Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	authH := authhandler.New(logger, services.Auth)
	usersH := usershandler.New(logger, services.Users)
	subscriptionsH := subscriptionshandler.New(logger, services.Subscriptions)
	editorsH := editorshandler.New(logger, services.Editors)
	newslettersH := newslettershandler.New(logger, services.Newsletters)
	categoriesH := categorieshandler.New(logger, services.Categories)
	offersH := offershandler.New(logger, services.Offers)
	lecturesH := lectureshandler.New(logger, services.Lectures)
	advertisementsH := advertisementshandler.New(logger, services.Advertisements)
	paymentsH := paymentshandler.New(logger, services.Payments)

	authed := middlewarectx.Auth(logger, jwtMaker, users)
	admins := middlewarectx.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	superOnly := middlewarectx.RequireRoles(models.RoleSuperAdmin)
	limited := middlewarectx.RateLimit(rate.Limit(20), 40)

	// Public endpoints
	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)
	r.Post("/auth/refresh", authH.Refresh)

	r.Get("/newsletters", newslettersH.ListAll)
	r.Get("/newsletters/by-day", newslettersH.ByDay)
	r.Get("/newsletters/by-month", newslettersH.ByMonth)
	r.Get("/newsletters/by-range", newslettersH.ByRange)
	r.Get("/newsletters/by-category/{id}", newslettersH.ByCategory)
	r.Get("/newsletters/{id}", newslettersH.Get)

	r.Get("/editors/public", editorsH.List)
	r.Get("/editors/by-day", editorsH.ByDay)
	r.Get("/editors/by-month", editorsH.ByMonth)
	r.Get("/editors/by-range", editorsH.ByRange)

	r.Get("/offres", offersH.List)
	r.Get("/offres/{id}", offersH.Get)
	r.Get("/categories", categoriesH.List)
	r.Get("/publicites/active", advertisementsH.ListActive)

	// IPN authenticates itself through the embedded credential hashes.
	r.Post("/payments/paytech/ipn", paymentsH.IPN)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(authed, limited)

		r.Post("/auth/me/deactivate", authH.Deactivate)
		r.Post("/users/updateStatus", usersH.UpdateStatus)

		r.Get("/abonnements/me", subscriptionsH.Me)
		r.Get("/abonnements/me/history", subscriptionsH.History)

		r.Post("/lectures", lecturesH.Save)
		r.Get("/lectures/me", lecturesH.InProgress)
		r.Get("/lectures/{journalID}", lecturesH.Get)

		r.Post("/payments/paytech/init", paymentsH.Init)

		r.Get("/editors", editorsH.List)
		r.Get("/editors/{id}", editorsH.Get)

		// Publisher administrators and super-admins
		r.Group(func(r chi.Router) {
			r.Use(admins)

			r.Get("/newsletters/mine", newslettersH.ListMine)
			r.Post("/newsletters", newslettersH.Create)
			r.Put("/newsletters/{id}", newslettersH.Update)
			r.Delete("/newsletters/{id}", newslettersH.Delete)

			r.Post("/users", usersH.Create)
			r.Delete("/users/{id}", usersH.Delete)
		})

		// Super-admin dashboard
		r.Group(func(r chi.Router) {
			r.Use(superOnly)

			r.Get("/users", usersH.List)
			r.Get("/users/stats/by-month", usersH.StatsByMonth)
			r.Get("/users/{id}", usersH.Get)
			r.Put("/users/{id}", usersH.Update)
			r.Put("/users/{id}/password", usersH.UpdatePassword)

			r.Get("/abonnements", subscriptionsH.List)
			r.Post("/abonnements", subscriptionsH.Create)
			r.Put("/abonnements/user/{userID}", subscriptionsH.Update)
			r.Delete("/abonnements/user/{userID}", subscriptionsH.Delete)
			r.Get("/abonnements/stats/by-month", subscriptionsH.StatsByMonth)
			r.Get("/abonnements/stats/most-popular-offre", subscriptionsH.PopularOffer)

			r.Post("/editors", editorsH.Create)
			r.Put("/editors/{id}", editorsH.Rename)
			r.Delete("/editors/{id}", editorsH.Delete)

			r.Post("/offres", offersH.Create)
			r.Put("/offres/{id}", offersH.Update)
			r.Delete("/offres/{id}", offersH.Delete)

			r.Post("/categories", categoriesH.Create)
			r.Delete("/categories/{id}", categoriesH.Delete)

			r.Get("/publicites", advertisementsH.List)
			r.Post("/publicites", advertisementsH.Create)
			r.Delete("/publicites/{id}", advertisementsH.Delete)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
