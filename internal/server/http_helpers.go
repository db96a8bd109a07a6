package server

import (
	"encoding/json"
	"io"
	"net/http"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatusForError(err), map[string]string{
		"error": err.Error(),
		"kind":  errKind(err),
	})
}
