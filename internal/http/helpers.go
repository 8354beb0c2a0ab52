package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// parseAsOf reads the as_of query parameter (YYYY-MM-DD). It defaults to
// today at midnight UTC so a whole day of requests shares one cache key.
func parseAsOf(r *http.Request) (time.Time, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if v == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
