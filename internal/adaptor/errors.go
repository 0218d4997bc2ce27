package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// handleServiceError maps service errors to the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var verr *entity.ValidationError

	switch {
	case errors.As(err, &verr):
		respondInvalid(w, log, operation, verr.Fields)

	case errors.Is(err, entity.ErrUnauthorized):
		log.Debug(operation+" unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.Is(err, entity.ErrInvalidCode):
		log.Debug(operation+" failed - invalid code", zap.Error(err))
		utils.ResponseUnauthorizedReason(w, "Invalid or expired code", "invalid_code")

	case errors.Is(err, entity.ErrNotFound):
		log.Debug(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Not found")

	case errors.Is(err, entity.ErrMethodNotAllowed):
		utils.ResponseMethodNotAllowed(w, "Operation not allowed for this content type")

	case errors.Is(err, entity.ErrUnavailable):
		log.Warn(operation+" unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Object storage is not configured")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// respondInvalid writes the field map as a 400 and logs it on one line.
func respondInvalid(w http.ResponseWriter, log *zap.Logger, operation string, fields map[string]string) {
	log.Debug(operation+" validation failed", zap.String("errors", utils.FormatValidationErrors(fields)))
	utils.ResponseBadRequest(w, "Validation failed", fields)
}

// decodeJSON decodes a size limited body into dst. Numbers are kept as
// json.Number so integer fields survive without float rounding.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode body: unexpected trailing data")
	}
	return nil
}

// queryFilters flattens the query string, keeping the first value per key.
func queryFilters(r *http.Request) map[string]string {
	values := r.URL.Query()
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
