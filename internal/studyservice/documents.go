package studyservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/events"
	"github.com/starford/studyplan/internal/extract"
	"github.com/starford/studyplan/internal/models"
	"github.com/starford/studyplan/internal/storage"
)

// MaxDocumentSize bounds an uploaded document.
const MaxDocumentSize = 32 << 20

// AddDocument stores an uploaded file under a sanitized name and indexes
// its text. An empty subject files it under General.
func (s *Service) AddDocument(ctx context.Context, name string, data []byte, subject string) (models.Document, error) {
	clean := storage.Sanitize(name)
	if clean == "" {
		return models.Document{}, apperr.Invalid("name", "%q is not a usable file name", name)
	}
	if len(data) == 0 {
		return models.Document{}, apperr.Invalid("file", "document is empty")
	}
	if len(data) > MaxDocumentSize {
		return models.Document{}, apperr.Invalid("file", "document exceeds %d bytes", MaxDocumentSize)
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = models.GeneralSubject
	}
	if subject != models.GeneralSubject {
		if _, err := s.subjects.GetSubject(ctx, subject); err != nil {
			return models.Document{}, err
		}
	}
	res, err := s.extractText(clean, data)
	if err != nil {
		return models.Document{}, err
	}

	s.docMu.Lock()
	defer s.docMu.Unlock()

	stored, err := s.files.FreeName(clean)
	if err != nil {
		return models.Document{}, apperr.Wrap(apperr.ErrStorage, "file", err)
	}
	if err := s.files.Write(stored, data); err != nil {
		return models.Document{}, apperr.Wrap(apperr.ErrStorage, "file", err)
	}
	delete(s.undeleted, stored)

	doc := models.Document{
		ID:          uuid.NewString(),
		Name:        stored,
		Path:        stored,
		Subject:     subject,
		Size:        int64(len(data)),
		Checksum:    storage.Checksum(data),
		ContentType: res.ContentType,
		Text:        res.Text,
		IngestedAt:  s.now().UTC(),
	}
	if err := s.documents.InsertDocument(ctx, doc); err != nil {
		if rmErr := s.files.Delete(stored); rmErr != nil {
			s.logger.Error("remove orphaned document file", slog.String("path", stored), slog.String("error", rmErr.Error()))
		}
		return models.Document{}, err
	}

	s.logger.Info("document added",
		slog.String("id", doc.ID),
		slog.String("path", doc.Path),
		slog.String("subject", doc.Subject),
		slog.Int64("size", doc.Size),
	)
	s.events.Emit(events.DocumentAdded, doc)
	return doc, nil
}

// RemoveDocument deletes a document's metadata and file. The metadata is
// removed even when the file cannot be; that failure is returned with
// removed set to true, and IndexFile retries the delete later.
func (s *Service) RemoveDocument(ctx context.Context, id string) (bool, error) {
	s.docMu.Lock()
	defer s.docMu.Unlock()

	doc, removed, err := s.documents.DeleteDocument(ctx, id)
	if err != nil || !removed {
		return false, err
	}
	s.events.Emit(events.DocumentRemoved, map[string]string{"id": doc.ID, "path": doc.Path})
	if err := s.files.Delete(doc.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.undeleted[doc.Path] = struct{}{}
		}
		return true, apperr.Wrap(apperr.ErrStorage, "file", err)
	}
	s.logger.Info("document removed", slog.String("id", doc.ID), slog.String("path", doc.Path))
	return true, nil
}

// Documents lists uploaded documents.
func (s *Service) Documents(ctx context.Context) ([]models.Document, error) {
	out, err := s.documents.ListDocuments(ctx)
	return nonNilSlice(out), err
}

// Document returns one document's metadata.
func (s *Service) Document(ctx context.Context, id string) (models.Document, error) {
	return s.documents.GetDocument(ctx, id)
}

// SearchDocuments runs a full-text query over document text.
func (s *Service) SearchDocuments(ctx context.Context, query string, limit int) ([]models.DocumentHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Invalid("q", "query is required")
	}
	out, err := s.documents.SearchDocuments(ctx, query, limit)
	return nonNilSlice(out), err
}

// IndexFile registers a file that already sits in the documents directory,
// such as one copied there by hand, under General. It reports false when
// the file is already indexed or belongs to a removed document, whose
// file it then tries to delete again.
func (s *Service) IndexFile(ctx context.Context, name string) (models.Document, bool, error) {
	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, ok := s.undeleted[name]; ok {
		if err := s.files.Delete(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("retry delete of removed document failed", slog.String("path", name), slog.String("error", err.Error()))
			return models.Document{}, false, nil
		}
		delete(s.undeleted, name)
		s.logger.Info("removed document file deleted", slog.String("path", name))
		return models.Document{}, false, nil
	}

	if doc, err := s.documents.DocumentByPath(ctx, name); err == nil {
		return doc, false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return models.Document{}, false, err
	}

	data, err := s.files.Read(name)
	if err != nil {
		return models.Document{}, false, apperr.Wrap(apperr.ErrStorage, "file", err)
	}
	res, err := s.extractText(name, data)
	if err != nil {
		return models.Document{}, false, err
	}
	doc := models.Document{
		ID:          uuid.NewString(),
		Name:        name,
		Path:        name,
		Subject:     models.GeneralSubject,
		Size:        int64(len(data)),
		Checksum:    storage.Checksum(data),
		ContentType: res.ContentType,
		Text:        res.Text,
		IngestedAt:  s.now().UTC(),
	}
	if err := s.documents.InsertDocument(ctx, doc); err != nil {
		return models.Document{}, false, err
	}
	s.logger.Info("document registered", slog.String("id", doc.ID), slog.String("path", name))
	s.events.Emit(events.DocumentAdded, doc)
	return doc, true, nil
}

// ForgetFile drops the metadata of a document whose file vanished from the
// documents directory. It reports false when the file is still there or
// the document is already gone.
func (s *Service) ForgetFile(ctx context.Context, doc models.Document) (bool, error) {
	s.docMu.Lock()
	defer s.docMu.Unlock()

	if _, err := s.files.Stat(doc.Path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, apperr.Wrap(apperr.ErrStorage, "file", err)
	}
	_, removed, err := s.documents.DeleteDocument(ctx, doc.ID)
	if err != nil || !removed {
		return false, err
	}
	s.logger.Info("document forgotten", slog.String("id", doc.ID), slog.String("path", doc.Path))
	s.events.Emit(events.DocumentRemoved, map[string]string{"id": doc.ID, "path": doc.Path})
	return true, nil
}

// extractText accepts formats without an extractor with empty text and
// rejects files that claim a format but cannot be read as it.
func (s *Service) extractText(name string, data []byte) (*extract.Result, error) {
	res, err := extract.Extract(name, data)
	if errors.Is(err, extract.ErrUnsupported) {
		s.logger.Debug("no text extractor", slog.String("name", name), slog.String("content_type", res.ContentType))
		return &extract.Result{ContentType: res.ContentType}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "file", fmt.Errorf("%s: %w", name, err))
	}
	return res, nil
}
