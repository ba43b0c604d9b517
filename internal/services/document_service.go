package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

const documentListKey = "list"

type documentService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDocumentService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) DocumentService {
	return &documentService{
		repo:      repo,
		cache:     cm,
		logger:    logger,
		validator: validator,
	}
}

func (s *documentService) List(ctx context.Context) ([]models.DocumentInfo, error) {
	var infos []models.DocumentInfo
	err := s.cache.Document.CacheOrExecute(ctx, documentListKey, &infos, cache.DocumentCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Document().List(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if infos == nil {
		infos = []models.DocumentInfo{}
	}
	return infos, nil
}

func (s *documentService) Get(ctx context.Context, name string) (*models.QuizDocument, error) {
	doc, err := s.repo.Document().Get(ctx, name)
	if err != nil {
		return nil, mapRepoError(err, name)
	}
	return doc, nil
}

func (s *documentService) Save(ctx context.Context, name string, doc *models.QuizDocument) error {
	if !validator.IsValidDocumentName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentName, name)
	}
	if err := s.validator.ValidateDocument(doc); err != nil {
		return err
	}

	if err := s.repo.Document().Save(ctx, name, doc); err != nil {
		return mapRepoError(err, name)
	}
	cache.InvalidateDocumentCache(ctx, s.cache, name)

	s.logger.Info("Document saved",
		"document", name,
		"flashcards", len(doc.Flashcards),
		"questions", len(doc.QuizQuestions))
	return nil
}

func (s *documentService) RestoreBackup(ctx context.Context, name string) (*models.QuizDocument, error) {
	doc, err := s.repo.Document().RestoreBackup(ctx, name)
	if err != nil {
		return nil, mapRepoError(err, name)
	}
	cache.InvalidateDocumentCache(ctx, s.cache, name)

	s.logger.Info("Document restored from backup", "document", name)
	return doc, nil
}

// mapRepoError turns storage sentinels into service sentinels.
func mapRepoError(err error, name string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, name)
	case errors.Is(err, repositories.ErrInvalidName):
		return fmt.Errorf("%w: %q", ErrInvalidDocumentName, name)
	case errors.Is(err, repositories.ErrNoBackup):
		return fmt.Errorf("%w: %q", ErrNoBackup, name)
	default:
		return err
	}
}
