// Package editors exposes the publisher endpoints: creation with logo
// upload and generated admin credentials, listings and deletion.
package editors

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/handlers/upload"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	editorservice "github.com/saabal/saabal-api/internal/services/editor"
)

// Service is the application-layer contract of the editor handlers.
type Service interface {
	Create(ctx context.Context, name, adminEmail string, firstname, lastname *string, logo *editorservice.LogoUpload) (*editorservice.CreateResult, error)
	Get(ctx context.Context, id int64) (*models.Editor, error)
	Rename(ctx context.Context, id int64, name string) (*models.Editor, error)
	List(ctx context.Context) ([]*models.Editor, error)
	ListByWindow(ctx context.Context, start, end time.Time) ([]*models.Editor, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the /editors routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the editors Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// createForm is the multipart creation payload; the logo file travels
// separately under the "logo" field.
type createForm struct {
	Name       string  `validate:"required"`
	AdminEmail string  `validate:"required,email"`
	Firstname  *string
	Lastname   *string
}

// RenameRequest renames a publisher.
type RenameRequest struct {
	Name string `json:"nom" validate:"required"`
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Create handles POST /editors (multipart form: nom, admin_email,
// firstname, lastname, logo). The generated admin password is returned
// once, inside the response message.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.editors.Create"
	log := h.opLog(r, op)

	if err := r.ParseMultipartForm(upload.MaxLogoBytes + 1<<20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed multipart form"))
		return
	}
	form := createForm{
		Name:       r.FormValue("nom"),
		AdminEmail: r.FormValue("admin_email"),
		Firstname:  optional(r.FormValue("firstname")),
		Lastname:   optional(r.FormValue("lastname")),
	}
	if err := h.validate.Struct(form); err != nil {
		if validateErr, ok := err.(validator.ValidationErrors); ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}

	logoFile, err := upload.FromRequest(r, "logo", upload.MaxLogoBytes, upload.LogoTypes)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var logo *editorservice.LogoUpload
	if logoFile != nil {
		defer logoFile.Close()
		logo = &editorservice.LogoUpload{
			Filename:    logoFile.Filename,
			ContentType: logoFile.ContentType,
			Size:        logoFile.Size,
			Reader:      logoFile.Reader,
		}
	}

	result, err := h.service.Create(r.Context(), form.Name, form.AdminEmail, form.Firstname, form.Lastname, logo)
	if err != nil {
		log.Error("failed to create editor", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("editor created",
		slog.Int64("editor_id", result.Editor.ID),
		slog.Int64("admin_id", result.AdminID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(result.Editor,
		"editor created; admin password: "+result.AdminPassword))
}

// List handles GET /editors and GET /editors/public.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.editors.List"
	log := h.opLog(r, op)

	editors, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list editors", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(editors, "editors"))
}

// Get handles GET /editors/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.editors.Get"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	editor, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Warn("failed to get editor", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(editor, "editor"))
}

// Rename handles PUT /editors/{id}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.editors.Rename"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	var req RenameRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	editor, err := h.service.Rename(r.Context(), id, req.Name)
	if err != nil {
		log.Error("failed to rename editor", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(editor, "editor updated"))
}

// Delete handles DELETE /editors/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.editors.Delete"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete editor", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	log.Info("editor deleted", slog.Int64("editor_id", id))
	render.JSON(w, r, response.OK(nil, "editor deleted"))
}

func (h *Handler) listWindow(w http.ResponseWriter, r *http.Request, op string, start, end time.Time) {
	log := h.opLog(r, op)

	editors, err := h.service.ListByWindow(r.Context(), start, end)
	if err != nil {
		log.Error("failed to list editors by window", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(editors, "editors"))
}

// ByDay handles GET /editors/by-day?date=YYYY-MM-DD.
func (h *Handler) ByDay(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.DayWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.editors.ByDay", start, end)
}

// ByMonth handles GET /editors/by-month?month=YYYY-MM.
func (h *Handler) ByMonth(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.MonthWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.editors.ByMonth", start, end)
}

// ByRange handles GET /editors/by-range?start=...&end=....
func (h *Handler) ByRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.RangeWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.editors.ByRange", start, end)
}
