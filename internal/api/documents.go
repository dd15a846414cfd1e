package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/studyservice"
)

// maxUploadBytes leaves room for multipart framing around the largest document.
const maxUploadBytes = studyservice.MaxDocumentSize + 1<<20

// ListDocuments handles GET /api/documents.
//
//	@Summary		List uploaded documents
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	DocumentListResponse
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Documents(r.Context())
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs})
}

// UploadDocument handles POST /api/documents (multipart/form-data, field
// "file", optional form field "subject").
//
//	@Summary		Upload a study document
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Document"
//	@Param			subject	formData	string	false	"Owning subject"
//	@Success		201		{object}	models.Document
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/documents [post]
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	doc, err := h.svc.AddDocument(r.Context(), header.Filename, data, r.FormValue("subject"))
	if err != nil {
		writeError(w, "upload document", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// SearchDocuments handles GET /api/documents/search.
//
//	@Summary		Full-text search across document text
//	@Tags			documents
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/documents/search [get]
func (h *Handler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.SearchDocuments(r.Context(), trimmed(r, "q"), limit)
	if err != nil {
		writeError(w, "search documents", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// DeleteDocument handles DELETE /api/documents/{id}.
//
//	@Summary		Remove a document and its file
//	@Tags			documents
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	RemovedResponse
//	@Failure		500	{object}	errResponse	"Metadata removed but the file could not be deleted"
//	@Router			/documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.RemoveDocument(r.Context(), pathParam(r, "id"))
	if err != nil {
		if removed && errors.Is(err, apperr.ErrStorage) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"removed": true,
				"error":   "document removed from the index but its file could not be deleted",
			})
			return
		}
		writeError(w, "delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, RemovedResponse{Removed: removed})
}
