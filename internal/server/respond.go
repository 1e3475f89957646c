package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/atlas/pkg/errors"
)

// maxBodyBytes caps request bodies; documents beyond this are rejected
// before decoding.
const maxBodyBytes = 8 << 20

// errorBody is the wire form of a failed request.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps error codes to HTTP statuses. Duplicate ids are checked
// before the validation class because they belong to it but signal a
// conflict, not a malformed request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeDuplicateMapID):
		return http.StatusConflict
	case errors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConsistency(err):
		return http.StatusConflict
	case errors.Is(err, errors.ErrCodeStore):
		return http.StatusBadGateway
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// decodeJSON decodes a size-limited request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// readBody reads a size-limited request body verbatim.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}
