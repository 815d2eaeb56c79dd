package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
)

// localIDRegex matches the app-wide id scheme: a one-letter type prefix
// (m/s/a) followed by a numeric provider id.
var localIDRegex = regexp.MustCompile(`^[msa]-\d+$`)

// ValidateLocalID checks that an id follows the "{typeLetter}-{numericID}"
// scheme. Returns an error describing the expected format otherwise.
func ValidateLocalID(id string) error {
	if !localIDRegex.MatchString(id) {
		return fmt.Errorf("invalid id format: %s, expected m-/s-/a- prefix and numeric id", id)
	}
	return nil
}

// ValidateLimit checks a result-count parameter is within acceptable range.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100")
	}
	return nil
}

// ValidateMediaType checks a content-type query parameter.
func ValidateMediaType(mediaType string) error {
	switch mediaType {
	case "movie", "tv", "series", "anime":
		return nil
	}
	return fmt.Errorf("invalid type: %s, expected movie, tv, series or anime", mediaType)
}

// WriteError writes a validation error response to the HTTP response writer.
// It takes a response writer, error message, and HTTP status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
