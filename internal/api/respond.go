package api

import (
	"encoding/json"
	"net/http"

	"botFleet/internal/constraint"
)

// respond writes the enveloped payload as JSON.
func respond(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, Response{Data: data})
}

func respondError(w http.ResponseWriter, status int, code, msg string, violations []constraint.Violation) {
	respond(w, status, Response{Error: &ErrorBody{Code: code, Message: msg, Violations: violations}})
}
