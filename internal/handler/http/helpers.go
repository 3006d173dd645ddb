package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
)

const internalErrorMessage = "Internal server error"

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// statusByKind is the single place error kinds become HTTP status codes.
var statusByKind = map[apperr.Kind]int{
	apperr.Validation:       http.StatusBadRequest,
	apperr.NotFound:         http.StatusNotFound,
	apperr.DuplicateEmail:   http.StatusBadRequest,
	apperr.Unauthenticated:  http.StatusUnauthorized,
	apperr.StoreUnavailable: http.StatusInternalServerError,
	apperr.Internal:         http.StatusInternalServerError,
}

func mapErrorToStatusCode(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondWithServiceError writes the client-safe form of err. Server errors never expose their
// cause; it is logged together with the request id.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := mapErrorToStatusCode(err)
	reqID := middleware.GetReqID(r.Context())

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", reqID).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, code, internalErrorMessage)
		return
	}

	message := apperr.PublicMessage(err)
	if message == "" {
		message = http.StatusText(code)
	}
	log.Warn().Err(err).Str("request_id", reqID).Int("status", code).Msg("request rejected")
	respondWithError(w, code, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Success: false, Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

// decodeJSON reads exactly one JSON object from the body and rejects unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func respondWithDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	log.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("failed to decode request body")
	respondWithError(w, http.StatusBadRequest, "Invalid request payload")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// respondWithValidationError writes a 400 with per-field details for validator failures.
func respondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		log.Error().Err(err).Type("validation_error_type", err).Msg("unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Details: formatValidationErrors(validationErrors),
	})
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "gte":
			details[field] = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		case "max":
			details[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed on '%s' validation", fe.Tag())
		}
	}
	return details
}
