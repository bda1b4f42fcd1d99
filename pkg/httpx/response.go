package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the structured error payload returned for every failed
// request. Clients never see framework-default bodies or internal detail.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the structured error body for the request path.
func WriteError(w http.ResponseWriter, r *http.Request, code int, message, errStr string) {
	WriteJSON(w, code, ErrorBody{
		Status:  "error",
		Message: message,
		Error:   errStr,
		Path:    r.URL.Path,
	})
}

// WriteUnauthorized reports a request that requires a principal but has none.
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, errStr string) {
	WriteError(w, r, http.StatusUnauthorized, "Unauthorized: Authentication required", errStr)
}

// WriteForbidden reports a principal lacking a required authority.
func WriteForbidden(w http.ResponseWriter, r *http.Request, errStr string) {
	WriteError(w, r, http.StatusForbidden, "Forbidden: Insufficient permissions", errStr)
}
