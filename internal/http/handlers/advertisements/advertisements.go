// Package advertisements exposes the banner endpoints: super-admin
// management and the public active listing.
package advertisements

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/handlers/upload"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	adservice "github.com/saabal/saabal-api/internal/services/advertisement"
)

// Service is the application-layer contract of the advertisement
// handlers.
type Service interface {
	Create(ctx context.Context, title string, description *string, active bool, image adservice.ImageUpload) (*models.Advertisement, error)
	List(ctx context.Context) ([]*models.Advertisement, error)
	ListActive(ctx context.Context) ([]*models.Advertisement, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the /publicites routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the advertisements Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Create handles POST /publicites (multipart form: titre, description,
// actif, image).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.advertisements.Create"
	log := h.opLog(r, op)

	if err := r.ParseMultipartForm(upload.MaxImageBytes + 1<<20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed multipart form"))
		return
	}
	title := r.FormValue("titre")
	if title == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field titre is a required field"))
		return
	}
	active := r.FormValue("actif") != "false"

	image, err := upload.FromRequest(r, "image", upload.MaxImageBytes, upload.ImageTypes)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if image == nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field image is a required field"))
		return
	}
	defer image.Close()

	ad, err := h.service.Create(r.Context(), title, optional(r.FormValue("description")), active,
		adservice.ImageUpload{
			Filename:    image.Filename,
			ContentType: image.ContentType,
			Size:        image.Size,
			Reader:      image.Reader,
		})
	if err != nil {
		log.Error("failed to create advertisement", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("advertisement created", slog.Int64("advertisement_id", ad.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(ad, "advertisement created"))
}

// List handles GET /publicites.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.advertisements.List"
	log := h.opLog(r, op)

	ads, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list advertisements", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(ads, "advertisements"))
}

// ListActive handles GET /publicites/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.advertisements.ListActive"
	log := h.opLog(r, op)

	ads, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list active advertisements", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(ads, "active advertisements"))
}

// Delete handles DELETE /publicites/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.advertisements.Delete"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Warn("failed to delete advertisement", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "advertisement deleted"))
}
