package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/cache"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/validator"
)

const (
	SourceStore   = "store"
	SourceCache   = "cache"
	SourceDefault = "default"
)

type metadataService struct {
	repo      repositories.MetadataRepository
	cache     cache.CacheService
	ttl       time.Duration
	validator *validator.Validator
	logger    *ServiceLogger
}

// NewMetadataService builds the metadata service. A nil cache disables the
// local fallback copy.
func NewMetadataService(
	repo repositories.MetadataRepository,
	cacheService cache.CacheService,
	ttl time.Duration,
	validator *validator.Validator,
	logger *ServiceLogger,
) MetadataService {
	return &metadataService{
		repo:      repo,
		cache:     cacheService,
		ttl:       ttl,
		validator: validator,
		logger:    logger,
	}
}

// Get prefers the store, then the cached copy, then the built-in default.
// Metadata is display-only, so a store failure is never surfaced.
func (s *metadataService) Get(ctx context.Context, subject models.SubjectCode) (*MetadataView, error) {
	if !subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	meta, err := s.repo.GetMetadata(ctx, subject)
	if err == nil && !meta.IsEmpty() {
		normalized := meta.Normalize()
		s.cacheSet(ctx, subject, normalized)
		return &MetadataView{Subject: subject, Metadata: normalized, Source: SourceStore}, nil
	}
	if err != nil && !repositories.IsNotFoundError(err) {
		s.logger.Logger().WarnContext(ctx, "Metadata store unavailable, falling back",
			"subject", subject,
			"error", err)
	}

	if cached, ok := s.cacheGet(ctx, subject); ok {
		return &MetadataView{Subject: subject, Metadata: cached, Source: SourceCache}, nil
	}
	return &MetadataView{Subject: subject, Metadata: models.DefaultSubjectMetadata(), Source: SourceDefault}, nil
}

// Update writes the local copy before the store so the edit survives a
// store outage on this instance.
func (s *metadataService) Update(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata, actor string) (view *MetadataView, err error) {
	log := s.logger.WithOperation(ctx, "update_metadata", actor)
	defer func() { log.LogResult(string(subject), "subject_metadata", err) }()

	if !subject.IsValid() {
		return nil, ErrInvalidSubject
	}
	meta = meta.Normalize()
	if err := s.validator.Validate(meta); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, subject, meta)
	if err := s.repo.UpdateMetadata(ctx, subject, meta); err != nil {
		return nil, storeError(err, ErrNotFound)
	}
	return &MetadataView{Subject: subject, Metadata: meta, Source: SourceStore}, nil
}

func (s *metadataService) cacheSet(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.MetadataKey(string(subject)), meta, s.ttl); err != nil {
		s.logger.Logger().WarnContext(ctx, "Failed to cache metadata", "subject", subject, "error", err)
	}
}

func (s *metadataService) cacheGet(ctx context.Context, subject models.SubjectCode) (models.SubjectMetadata, bool) {
	if s.cache == nil {
		return models.SubjectMetadata{}, false
	}
	var meta models.SubjectMetadata
	if err := s.cache.Get(ctx, cache.MetadataKey(string(subject)), &meta); err != nil {
		if !cache.IsCacheMiss(err) {
			s.logger.Logger().WarnContext(ctx, "Failed to read cached metadata", "subject", subject, "error", err)
		}
		return models.SubjectMetadata{}, false
	}
	if meta.IsEmpty() {
		return models.SubjectMetadata{}, false
	}
	return meta, true
}
