// Package response writes the JSON bodies every handler returns.
//
//	{"message": "...", "<resource>": ...}   on success
//	{"error": "..."}                         on failure
//	{"errors": {"field": "..."}}             on validation failure
package response

import (
	"errors"
	"net/http"

	"github.com/unrolled/render"

	"github.com/shashiranjanraj/bazaar/pkg/apperr"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// InternalMessage is the only text a client sees for an unexpected failure.
const InternalMessage = "Internal server error"

var rnd = render.New(render.Options{UnEscapeHTML: true})

// Body is a success payload: a message plus named resources.
type Body map[string]any

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	_ = rnd.JSON(w, status, v)
}

// Message writes {"message": msg, ...extra}.
func Message(w http.ResponseWriter, status int, msg string, extra Body) {
	body := Body{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ValidationError writes a 400 with the field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// Fail maps err onto a response. Errors that are not *apperr.Error are
// logged with the request's logger and reported as 500 without detail.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, InternalMessage)
		return
	}

	if e.Kind == apperr.KindValidation {
		ValidationError(w, e.Fields)
		return
	}
	Error(w, apperr.HTTPStatus(e.Kind), e.Message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
