package httptransport

import (
	"encoding/json"
	"net/http"

	"gemreg/pkg/domerr"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Address string `json:"address,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates the domain error taxonomy into HTTP responses.
// Compliance denials carry the offending address and reason so clients can
// tell a deny-list hit from a missing allow-list entry.
func writeError(w http.ResponseWriter, err error) {
	code := domerr.CodeOf(err)
	resp := errorResponse{Error: string(code), Message: err.Error()}
	if detail, ok := domerr.DeniedFrom(err); ok {
		resp.Address = detail.Addr.String()
		resp.Reason = string(detail.Reason)
	}
	writeJSON(w, statusOf(code), resp)
}

func statusOf(code domerr.Code) int {
	switch code {
	case domerr.CodeInvalidArgument:
		return http.StatusBadRequest
	case domerr.CodeUnauthorized:
		return http.StatusForbidden
	case domerr.CodeDenied:
		return http.StatusForbidden
	case domerr.CodeNotFound:
		return http.StatusNotFound
	case domerr.CodeAlreadyExists:
		return http.StatusConflict
	case domerr.CodePaused:
		return http.StatusLocked
	case domerr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
