package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"unicode"

	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
	"github.com/kfreiman/office2md/internal/session"
)

// MsgSuccess accompanies a freshly converted result
const MsgSuccess = "Conversion completed successfully!"

// handleIndex renders the page with the session's latest result, if any
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.ID(w, r)
	s.renderPage(w, r, http.StatusOK, pageData{
		Result: s.sessions.Get(r.Context(), id),
	})
}

// handleConvert converts the submitted file or URL and re-renders the page
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := s.sessions.ID(w, r)

	req, err := s.readRequest(w, r)
	if err == nil {
		var result *conversion.Result
		result, err = s.service.Convert(ctx, req)
		if err == nil {
			s.sessions.Put(ctx, id, result)
			s.renderPage(w, r, http.StatusOK, pageData{
				Result:  result,
				Message: MsgSuccess,
			})
			return
		}
	}

	s.sessions.Clear(ctx, id)
	s.renderPage(w, r, statusFor(err), pageData{
		Error: conversion.UserMessage(err),
		URL:   req.URL,
	})
}

// handleDownload serves the session's markdown as an attachment
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var result *conversion.Result
	if id, ok := session.Lookup(r); ok {
		result = s.sessions.Get(r.Context(), id)
	}
	if result == nil {
		http.Error(w, "No converted document in this session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, result.Markdown); err != nil {
		s.logger.WarnContext(r.Context(), "download interrupted",
			"error", err,
			"filename", result.Filename,
		)
	}
}

type apiConvertResponse struct {
	Filename string `json:"filename,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleAPIConvert accepts the same form as /convert and answers with JSON
func (s *Server) handleAPIConvert(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		writeJSON(w, statusFor(err), apiConvertResponse{Error: conversion.UserMessage(err)})
		return
	}

	result, err := s.service.Convert(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), apiConvertResponse{Error: conversion.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, apiConvertResponse{
		Filename: result.Filename,
		Markdown: result.Markdown,
	})
}

// handleAPIFormats lists the supported formats by category
func (s *Server) handleAPIFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, converter.SupportedFormats())
}

// readRequest extracts the upload and URL from a multipart or urlencoded form
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (conversion.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+formOverhead)

	var req conversion.Request
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, s.formError(r, err)
	}
	req.URL = r.FormValue("url")

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return req, nil
	case err != nil:
		return req, s.formError(r, err)
	}
	defer file.Close()

	if header.Size > s.maxUploadSize {
		return req, tooLarge(s.maxUploadSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return req, s.formError(r, err)
	}

	req.Filename = header.Filename
	req.Data = data
	return req, nil
}

func (s *Server) formError(r *http.Request, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || r.ContentLength > s.maxUploadSize+formOverhead {
		return tooLarge(s.maxUploadSize)
	}
	s.logger.WarnContext(r.Context(), "failed to read form",
		"error", err,
	)
	return &conversion.ValidationError{Field: "form", Reason: "Could not read the submitted form"}
}

func tooLarge(limit int64) error {
	return &conversion.ValidationError{
		Field:  "file",
		Reason: fmt.Sprintf("The uploaded file is too large (limit %d MB)", limit>>20),
	}
}

// contentDisposition quotes ASCII names as is and falls back to RFC 2231
// encoding for everything else
func contentDisposition(filename string) string {
	for _, r := range filename {
		if r > unicode.MaxASCII {
			return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
		}
	}
	return `attachment; filename="` + filename + `"`
}

func statusFor(err error) int {
	if conversion.IsValidation(err) {
		return http.StatusBadRequest
	}
	var convErr *conversion.ConversionError
	if errors.As(err, &convErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
