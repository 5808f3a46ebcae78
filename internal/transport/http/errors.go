package httptransport

import (
	"encoding/json"
	"net/http"

	"synonym-game/internal/engine"
)

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// writeIntentError maps an intent failure to a status code. The message goes
// along so a renderer can show it.
func writeIntentError(w http.ResponseWriter, err error) {
	code := engine.ErrorCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(code))
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code, "message": err.Error()})
}

func statusFor(code string) int {
	switch code {
	case engine.CodeInvalidRequest:
		return http.StatusBadRequest
	case engine.CodeGuard:
		return http.StatusConflict
	case engine.CodeProcess:
		return http.StatusUnprocessableEntity
	case engine.CodeMalformed:
		return http.StatusBadGateway
	case engine.CodeNetwork, engine.CodeStopped:
		return http.StatusServiceUnavailable
	case engine.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
