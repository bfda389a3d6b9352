package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ParseJSON decodes the JSON request body into dest, capping the body size
// so oversized payloads get a proper 413.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
