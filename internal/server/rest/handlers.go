package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/filedo/internal/server/services"
)

const (
	codeBadRequest    = "bad_request"
	codeTooLarge      = "too_large"
	maxMultipartInMem = 32 << 20
	maxSearchBody     = 64 << 10
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(maxMultipartInMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", codeTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "No file part", codeBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No file part", codeBadRequest)
		return
	}

	ref := strings.TrimSpace(r.FormValue("nomor_surat"))
	if ref == "" {
		writeError(w, http.StatusBadRequest, "No selected files or missing nomor_surat", codeBadRequest)
		return
	}

	files, closeAll, err := openParts(headers)
	defer closeAll()
	if err != nil {
		s.writeFailure(w, r, uploadFailures, err)
		return
	}

	res, err := s.service.Upload(r.Context(), ref, files)
	if err != nil {
		s.writeFailure(w, r, uploadFailures, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:     "success",
		Message:    "Files uploaded and stored safely",
		StoredPath: res.StoredRoot,
		Filenames:  res.Filenames,
		Key:        res.Key,
	})
}

// openParts opens every uploaded part. The returned func closes whatever was
// opened, also on error.
func openParts(headers []*multipart.FileHeader) ([]services.IncomingFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]services.IncomingFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, services.IncomingFile{Name: h.Filename, Body: f})
	}
	return files, closeAll, nil
}

type searchRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxSearchBody)).Decode(&req)
	ref := strings.TrimSpace(req.Filename)
	if err != nil || ref == "" {
		writeError(w, http.StatusBadRequest, "Nomor Surat is required", codeBadRequest)
		return
	}

	res, err := s.service.RetrieveByReference(r.Context(), ref, r.Host)
	if err != nil {
		s.writeFailure(w, r, searchFailures, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Status:            "success",
		OriginalFilenames: res.Filenames,
		DownloadCommand:   res.FetchInstruction,
		DownloadURL:       res.DownloadURL,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing 'key' parameter", codeBadRequest)
		return
	}

	res, err := s.service.RetrieveByKey(r.Context(), key, r.Host)
	if err != nil {
		s.writeFailure(w, r, retrieveFailures, err)
		return
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Res:         http.StatusOK,
		Message:     "Berhasil Decrypt!",
		Data:        res.Filenames,
		SCPCommand:  res.FetchInstruction,
		DownloadURL: res.DownloadURL,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
