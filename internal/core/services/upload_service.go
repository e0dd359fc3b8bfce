package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
	"github.com/kamal-hamza/nfts-cli/internal/core/ports"
)

// UploadService loads an asset, builds its metadata and submits both to the storage service
type UploadService struct {
	loader  ports.FileLoader
	builder *MetadataBuilder
	client  ports.StorageClient
	history ports.HistoryRepository
	gateway string
	logger  *zap.Logger
}

// NewUploadService creates a new upload service. history and logger may be nil.
func NewUploadService(
	loader ports.FileLoader,
	builder *MetadataBuilder,
	client ports.StorageClient,
	history ports.HistoryRepository,
	logger *zap.Logger,
) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		loader:  loader,
		builder: builder,
		client:  client,
		history: history,
		gateway: builder.defaults.GatewayHost,
		logger:  logger,
	}
}

// StoreFileRequest represents a request to upload a local (or http) image
type StoreFileRequest struct {
	Path        string
	Name        string
	Description string
	Origins     map[string]string
	Authors     []string

	// SkipDuplicates returns the previous upload instead of submitting
	// content whose hash is already in the history.
	SkipDuplicates bool
}

// StoreStaticRequest represents a request to store metadata for an already stored image
type StoreStaticRequest struct {
	ImageURI    string
	Name        string
	Description string
	Origins     map[string]string
	Authors     []string
}

// UploadResponse represents the outcome of an upload
type UploadResponse struct {
	Record     *domain.MetadataRecord
	Result     *domain.UploadResult
	GatewayURL string
	Duplicate  bool
}

// StoreFile reads the file at req.Path and stores it with its metadata
func (s *UploadService) StoreFile(ctx context.Context, req StoreFileRequest) (*UploadResponse, error) {
	asset, err := s.loader.Load(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	s.logger.Debug("loaded asset",
		zap.String("filename", asset.Filename),
		zap.String("mime", asset.MimeType),
		zap.Int("bytes", asset.Size()),
	)

	record, err := s.builder.Build(MetadataRequest{
		Image:       domain.EmbeddedImage(asset),
		Name:        req.Name,
		Description: req.Description,
		Origins:     req.Origins,
		Authors:     req.Authors,
	})
	if err != nil {
		return nil, err
	}

	hash := asset.Hash()
	if req.SkipDuplicates && s.history != nil {
		if prev, err := s.history.GetByHash(ctx, hash); err == nil {
			s.logger.Info("content already uploaded", zap.String("hash", hash), zap.String("uri", prev.URI))
			return &UploadResponse{
				Record:     record,
				Result:     &domain.UploadResult{URI: prev.URI, IPNFT: prev.IPNFT},
				GatewayURL: domain.GatewayURL(prev.URI, s.gateway),
				Duplicate:  true,
			}, nil
		}
	}

	return s.submit(ctx, record, filepath.Base(asset.Filename), hash)
}

// StoreStatic stores a record whose image is a URI rather than file content
func (s *UploadService) StoreStatic(ctx context.Context, req StoreStaticRequest) (*UploadResponse, error) {
	record, err := s.builder.Build(MetadataRequest{
		Image:       domain.StaticImage(req.ImageURI),
		Name:        req.Name,
		Description: req.Description,
		Origins:     req.Origins,
		Authors:     req.Authors,
	})
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, record, "", "")
}

func (s *UploadService) submit(ctx context.Context, record *domain.MetadataRecord, filename, hash string) (*UploadResponse, error) {
	start := time.Now()
	result, err := s.client.Store(ctx, record)
	if err != nil {
		s.logger.Debug("store failed", zap.String("name", record.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to store %q: %w", record.Name, err)
	}
	s.logger.Info("stored metadata",
		zap.String("name", record.Name),
		zap.String("uri", result.URI),
		zap.Duration("took", time.Since(start)),
	)

	if s.history != nil {
		entry := domain.UploadEntry{
			Name:        record.Name,
			Description: record.Description,
			Filename:    filename,
			Hash:        hash,
			URI:         result.URI,
			IPNFT:       result.IPNFT,
			UploadedAt:  time.Now(),
		}
		if err := s.history.Save(ctx, entry); err != nil {
			s.logger.Warn("failed to record upload history", zap.Error(err))
		}
	}

	return &UploadResponse{
		Record:     record,
		Result:     result,
		GatewayURL: domain.GatewayURL(result.URI, s.gateway),
	}, nil
}
