package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"io"
	"log"
	"net/http"
)

type errorBody struct {
	Error string      `json:"error"`
	Code  apperr.Kind `json:"code"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidArgument, apperr.FailedPrecondition, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Inconsistent:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, statusFor(kind), errorBody{Error: apperr.Message(err), Code: kind})
}

// decode reads a JSON body into v. An empty body leaves v untouched so the
// service can report which field is missing.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.E(apperr.InvalidArgument, "invalid json")
}
