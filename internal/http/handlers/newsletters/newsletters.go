// Package newsletters exposes the newsletter endpoints: scoped writes
// for administrators and public listings for readers.
package newsletters

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/handlers/upload"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	newsletterservice "github.com/saabal/saabal-api/internal/services/newsletter"
)

// Service is the application-layer contract of the newsletter handlers.
type Service interface {
	Create(ctx context.Context, caller models.Identity, in newsletterservice.CreateInput) (*models.Newsletter, error)
	Update(ctx context.Context, caller models.Identity, id int64, in newsletterservice.UpdateInput) (*models.Newsletter, error)
	Delete(ctx context.Context, caller models.Identity, id int64) error
	Get(ctx context.Context, id int64) (*models.Newsletter, error)
	ListFor(ctx context.Context, caller models.Identity) ([]*models.Newsletter, error)
	ListAll(ctx context.Context) ([]*models.Newsletter, error)
	ListByWindow(ctx context.Context, start, end time.Time) ([]*models.Newsletter, error)
	ListByCategory(ctx context.Context, categoryID int64, q string) ([]*models.Newsletter, error)
}

// Handler serves the /newsletters routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the newsletters Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func identityOr401(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
	}
	return identity, ok
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseDate accepts the publication date as RFC 3339 or a bare
// YYYY-MM-DD day.
func parseDate(v string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func pdfFromRequest(w http.ResponseWriter, r *http.Request) (*newsletterservice.PDFUpload, func(), bool) {
	file, err := upload.FromRequest(r, "pdf", upload.MaxPDFBytes, upload.PDFTypes)
	if err != nil {
		response.Err(w, r, err)
		return nil, nil, false
	}
	if file == nil {
		return nil, func() {}, true
	}
	return &newsletterservice.PDFUpload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Reader:      file.Reader,
	}, func() { file.Close() }, true
}

// Create handles POST /newsletters (multipart form: title, gros_titre,
// content, editor_id, categorie_id, date_journal, pdf).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.Create"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(upload.MaxPDFBytes + 1<<20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed multipart form"))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field title is a required field"))
		return
	}
	editorID, err := strconv.ParseInt(r.FormValue("editor_id"), 10, 64)
	if err != nil || editorID < 1 {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid editor_id"))
		return
	}
	categoryID, err := strconv.ParseInt(r.FormValue("categorie_id"), 10, 64)
	if err != nil || categoryID < 1 {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid categorie_id"))
		return
	}
	publishedAt := time.Now()
	if v := r.FormValue("date_journal"); v != "" {
		parsed, ok := parseDate(v)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_journal"))
			return
		}
		publishedAt = parsed
	}

	pdf, closePDF, ok := pdfFromRequest(w, r)
	if !ok {
		return
	}
	defer closePDF()

	n, err := h.service.Create(r.Context(), identity, newsletterservice.CreateInput{
		Title:       title,
		Highlight:   optional(r.FormValue("gros_titre")),
		Content:     optional(r.FormValue("content")),
		EditorID:    editorID,
		CategoryID:  categoryID,
		PublishedAt: publishedAt,
		PDF:         pdf,
	})
	if err != nil {
		log.Error("failed to create newsletter", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("newsletter created", slog.Int64("newsletter_id", n.ID), slog.Int64("editor_id", n.EditorID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(n, "newsletter created"))
}

// Update handles PUT /newsletters/{id} (multipart form, all fields
// optional).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.Update"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(upload.MaxPDFBytes + 1<<20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed multipart form"))
		return
	}

	in := newsletterservice.UpdateInput{
		Title:     optional(r.FormValue("title")),
		Highlight: optional(r.FormValue("gros_titre")),
		Content:   optional(r.FormValue("content")),
	}
	if v := r.FormValue("categorie_id"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || categoryID < 1 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid categorie_id"))
			return
		}
		in.CategoryID = &categoryID
	}
	if v := r.FormValue("date_journal"); v != "" {
		parsed, ok := parseDate(v)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_journal"))
			return
		}
		in.PublishedAt = &parsed
	}

	pdf, closePDF, ok := pdfFromRequest(w, r)
	if !ok {
		return
	}
	defer closePDF()
	in.PDF = pdf

	n, err := h.service.Update(r.Context(), identity, id, in)
	if err != nil {
		log.Error("failed to update newsletter", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(n, "newsletter updated"))
}

// Delete handles DELETE /newsletters/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.Delete"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		log.Warn("failed to delete newsletter", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "newsletter deleted"))
}

// Get handles GET /newsletters/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.Get"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Warn("failed to get newsletter", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(n, "newsletter"))
}

// ListMine handles GET /newsletters/mine: the caller's visible issues,
// scoped for administrators.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.ListMine"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	rows, err := h.service.ListFor(r.Context(), identity)
	if err != nil {
		log.Error("failed to list newsletters", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "newsletters"))
}

// ListAll handles GET /newsletters.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.ListAll"
	log := h.opLog(r, op)

	rows, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list newsletters", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "newsletters"))
}

func (h *Handler) listWindow(w http.ResponseWriter, r *http.Request, op string, start, end time.Time) {
	log := h.opLog(r, op)

	rows, err := h.service.ListByWindow(r.Context(), start, end)
	if err != nil {
		log.Error("failed to list newsletters by window", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "newsletters"))
}

// ByDay handles GET /newsletters/by-day?date=YYYY-MM-DD.
func (h *Handler) ByDay(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.DayWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.newsletters.ByDay", start, end)
}

// ByMonth handles GET /newsletters/by-month?month=YYYY-MM.
func (h *Handler) ByMonth(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.MonthWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.newsletters.ByMonth", start, end)
}

// ByRange handles GET /newsletters/by-range?start=...&end=....
func (h *Handler) ByRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := bind.RangeWindow(w, r)
	if !ok {
		return
	}
	h.listWindow(w, r, "handlers.newsletters.ByRange", start, end)
}

// ByCategory handles GET /newsletters/by-category/{id}?q=....
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletters.ByCategory"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	rows, err := h.service.ListByCategory(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		log.Warn("failed to list newsletters by category", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "newsletters"))
}
