package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/filedo/internal/server/services"
)

type uploadResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	StoredPath string   `json:"stored_path"`
	Filenames  []string `json:"filenames"`
	Key        string   `json:"key"`
}

type searchResponse struct {
	Status            string   `json:"status"`
	OriginalFilenames []string `json:"original_filenames"`
	DownloadCommand   string   `json:"download_command"`
	DownloadURL       string   `json:"download_url,omitempty"`
}

type retrieveResponse struct {
	Res         int      `json:"res"`
	Message     string   `json:"message"`
	Data        []string `json:"data"`
	SCPCommand  string   `json:"scp_command"`
	DownloadURL string   `json:"download_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type failure struct {
	status  int
	message string
}

// Per-endpoint mapping of failure kinds to status and message.
var (
	uploadFailures = map[string]failure{
		services.KindNoStorage:     {http.StatusInternalServerError, "No search paths configured"},
		services.KindSaveFailed:    {http.StatusInternalServerError, "Failed to save files locally"},
		services.KindNoValidFiles:  {http.StatusBadRequest, "No valid files saved"},
		services.KindDBUnreachable: {http.StatusServiceUnavailable, "Database error during insertion"},
	}
	searchFailures = map[string]failure{
		services.KindDBUnreachable:    {http.StatusServiceUnavailable, "Database connection failed"},
		services.KindDecryptionFailed: {http.StatusInternalServerError, "Failed to decrypt file data"},
		services.KindNotFound:         {http.StatusNotFound, "Files not found in storage"},
		services.KindZipFailed:        {http.StatusInternalServerError, "System error: Failed to process files"},
	}
	retrieveFailures = map[string]failure{
		services.KindDecryptionFailed: {http.StatusBadRequest, "Invalid key or decryption failed"},
		services.KindNotFound:         {http.StatusNotFound, "Files not found in any storage location"},
		services.KindZipFailed:        {http.StatusInternalServerError, "Failed to process the files"},
	}
)

var internalFailure = failure{http.StatusInternalServerError, "Internal server error"}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeFailure maps a service error through table and writes it.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, table map[string]failure, err error) {
	kind := services.FailureKind(err)
	f, ok := table[kind]
	if !ok {
		f, kind = internalFailure, services.KindInternal
	}

	if f.status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"request_id", RequestIDFromContext(r.Context()), "kind", kind, "error", err)
	}
	writeError(w, f.status, f.message, kind)
}
