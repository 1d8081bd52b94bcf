// Package bind decodes and validates JSON request bodies, writing the
// failure envelope itself so handlers only deal with valid input.
package bind

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
)

// JSON decodes the request body into req and validates its tags. The
// boolean reports success; on failure the response has been written.
func JSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *validator.Validate, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		if errors.Is(err, io.EOF) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request body"))
			return false
		}
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed request body"))
		return false
	}
	if err := v.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return false
		}
		log.Error("failed to validate request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	return true
}

// ID parses the named chi URL parameter as a positive integer id. The
// boolean reports success; on failure the response has been written.
func ID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid "+param))
		return 0, false
	}
	return id, true
}
