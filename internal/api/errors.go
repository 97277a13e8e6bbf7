package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes v with the given status. Encoding failures are not
// recoverable once the status line is on the wire, so they are dropped.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr writes the standard JSON error body with the given status.
func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg)
}

func writeNotFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not found")
}

func writeInternalError(w http.ResponseWriter) {
	writeErr(w, http.StatusInternalServerError, "internal server error")
}
