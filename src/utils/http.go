package utils

import (
	"encoding/json"
	"net/http"
)

// SendJSONError writes a JSON error body with the given HTTP status code.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
