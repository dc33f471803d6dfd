package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/JonMunkholm/drillbook/internal/logging"
	mw "github.com/JonMunkholm/drillbook/internal/web/middleware"
	"github.com/JonMunkholm/drillbook/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and other fields.
const multipartOverhead = 1 << 20

// maxConfirmBody bounds the JSON body of a confirm. Staged rows are small,
// so this is generous for any file that passed the upload limit.
const maxConfirmBody = 32 << 20

type previewResponse struct {
	Success bool `json:"success"`
	importer.StagedImport
}

type confirmResponse struct {
	Success bool `json:"success"`
	importer.CommitResult
}

type historyResponse struct {
	Runs []importer.ImportRun `json:"runs"`
}

// handlePreview parses an uploaded file and returns the staged rows for
// review. Nothing is stored.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: request body over %d bytes", importer.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	size := header.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}

	staged, err := s.imports.Preview(r.Context(), userID, importer.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        size,
		Data:        data,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderHTML(w, r, templates.PreviewSummary(staged))
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Success: true, StagedImport: staged})
}

// handleConfirm commits a resubmitted row set.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}

	var req importer.ConfirmRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfirmBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	result, err := s.imports.Confirm(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderHTML(w, r, templates.CommitSummary(result))
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Success: true, CommitResult: result})
}

// handleHistory lists the caller's recent imports.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.user(w, r)
	if !ok {
		return
	}

	runs, err := s.imports.History(r.Context(), userID, parseIntParam(r, "limit", importer.DefaultHistoryLimit))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []importer.ImportRun{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Runs: runs})
}

// handleHealth reports liveness and, when configured, database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// user returns the authenticated caller or writes 401.
func (s *Server) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := mw.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, importer.ErrUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "error", err)
	}
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
