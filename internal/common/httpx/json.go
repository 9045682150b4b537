package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"jwt-pizza-service/internal/common/apperr"
	"jwt-pizza-service/internal/domain"
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes the {"message": ...} envelope every error and
// acknowledgement uses.
func WriteMessage(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, domain.MessageResponse{Message: msg})
}

// WriteError reports err to the client. Errors without a status are logged
// and hidden behind a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var se *apperr.StatusError
	if errors.As(err, &se) {
		WriteMessage(w, se.Status, se.Message)
		return
	}
	Logger(r.Context()).Error("request_failed", err, map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	WriteMessage(w, http.StatusInternalServerError, "internal server error")
}

// DecodeJSON reads a single JSON value from the request body. Unknown
// fields are ignored so clients may echo back whole objects.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.BadRequest("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}

// PathID parses a numeric path parameter. ok is false when the value is not
// a positive integer.
func PathID(r *http.Request, key string) (int64, bool) {
	n, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// QueryInt parses a query parameter, falling back to def.
func QueryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
