package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cellarline/cellarline-backend/api/controllers"
	webhookcontrollers "github.com/cellarline/cellarline-backend/api/controllers/webhooks"
	"github.com/cellarline/cellarline-backend/api/middleware"
	"github.com/cellarline/cellarline-backend/internal/cellars"
	"github.com/cellarline/cellarline-backend/internal/items"
	"github.com/cellarline/cellarline-backend/internal/media"
	"github.com/cellarline/cellarline-backend/internal/notifylog"
	"github.com/cellarline/cellarline-backend/internal/settings"
	"github.com/cellarline/cellarline-backend/internal/users"
	"github.com/cellarline/cellarline-backend/internal/vision"
	"github.com/cellarline/cellarline-backend/pkg/config"
	"github.com/cellarline/cellarline-backend/pkg/db"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
	"github.com/cellarline/cellarline-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            *db.Client
	Redis         *redis.Client
	LineClient    *line.Client
	TokenVerifier *line.TokenVerifier
	Users         *users.Service
	Cellars       *cellars.Service
	Items         *items.Service
	Settings      *settings.Service
	Media         *media.Service
	Vision        *vision.Service
	NotifyLog     *notifylog.Repository
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/line", webhookcontrollers.LineWebhook(p.LineClient, p.Users, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Logger, p.TokenVerifier, p.Users))

		r.Route("/cellars", func(r chi.Router) {
			r.Get("/", controllers.CellarsList(p.Cellars, p.Logger))
			r.Post("/", controllers.CellarsCreate(p.Cellars, p.Logger))
			r.Get("/{cellarId}", controllers.CellarsGet(p.Cellars, p.Logger))
			r.Patch("/{cellarId}", controllers.CellarsUpdate(p.Cellars, p.Logger))
			r.Delete("/{cellarId}", controllers.CellarsDelete(p.Cellars, p.Logger))
			r.Get("/{cellarId}/usage", controllers.CellarsUsage(p.Cellars, p.Logger))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemsList(p.Items, p.Logger))
			r.Post("/", controllers.ItemsCreate(p.Items, p.Logger))
			r.Post("/recognize", controllers.ItemsRecognize(p.Vision, p.Logger))
			r.Get("/{itemId}", controllers.ItemsGet(p.Items, p.Logger))
			r.Patch("/{itemId}", controllers.ItemsUpdate(p.Items, p.Logger))
			r.Delete("/{itemId}", controllers.ItemsDelete(p.Items, p.Logger))
			r.Post("/{itemId}/open", controllers.ItemsOpen(p.Items, p.Logger))
			r.Get("/{itemId}/remaining", controllers.ItemsRemaining(p.Items, p.Logger))
			r.Post("/{itemId}/remaining", controllers.ItemsUpdateRemaining(p.Items, p.Logger))
			r.Post("/{itemId}/status", controllers.ItemsUpdateStatus(p.Items, p.Logger))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/labels", controllers.LabelUpload(p.Media, p.Logger))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/notifications", controllers.NotificationSettingsGet(p.Settings, p.Logger))
			r.Put("/notifications", controllers.NotificationSettingsUpdate(p.Settings, p.Logger))
		})

		r.Get("/notifications", controllers.NotificationsList(p.NotifyLog, p.Logger))
	})

	return r
}
