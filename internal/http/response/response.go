// Package response contains the uniform JSON envelope returned by every
// endpoint, including errors, and helpers to render it.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/apperr"
)

// Response is the envelope of every API reply. On errors Success is
// false and Data is an empty array, matching what the dashboard expects.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// OK builds a success envelope.
func OK(data any, message string) Response {
	if data == nil {
		data = []any{}
	}
	return Response{Success: true, Data: data, Message: message}
}

// Error builds a failure envelope with an empty data array.
func Error(message string) Response {
	return Response{Success: false, Data: []any{}, Message: message}
}

// Err writes the envelope and status for a classified service error.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(apperr.HTTPStatus(err))
	render.JSON(w, r, Error(apperr.Message(err)))
}

// ValidationError renders validator violations into one human-readable
// failure envelope.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater or equal to %s", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}
