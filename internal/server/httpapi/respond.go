package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/common"
)

type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, message string, err error) {
	f := failure{Message: message}
	if err != nil {
		f.Error = err.Error()
	}
	writeJSON(w, status, f)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrInvalidPayload), errors.Is(err, common.ErrInvalidWatermark):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body into v. Unknown fields are ignored; a missing
// body is reported as ErrInvalidPayload.
func decodeBody(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body: %w", common.ErrInvalidPayload, err)
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return nil
}
