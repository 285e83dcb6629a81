package services

import (
	"context"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/repositories"
	"store-backend-api/internal/storage"
)

// cleanupService implements the CleanupService interface
type cleanupService struct {
	productRepo repositories.ProductRepository
	files       storage.FileStorage
	logger      *logrus.Logger
}

// NewCleanupService creates a new cleanup service instance
func NewCleanupService(
	productRepo repositories.ProductRepository,
	files storage.FileStorage,
	logger *logrus.Logger,
) CleanupService {
	if logger == nil {
		logger = logrus.New()
	}
	return &cleanupService{
		productRepo: productRepo,
		files:       files,
		logger:      logger,
	}
}

// CleanupOrphanImages removes stored images no product references anymore.
// Products reference images by URL or key; both are reduced to the file
// basename before comparing, which also covers legacy public URLs.
func (s *cleanupService) CleanupOrphanImages(ctx context.Context) (*CleanupResult, error) {
	if s.files == nil {
		return nil, invalidf("file storage is not configured")
	}

	refs, err := s.productRepo.ImageRefs(ctx)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar imagens referenciadas", err)
	}

	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if name := path.Base(storageKeyFromRef(ref)); name != "" && name != "." {
			referenced[name] = struct{}{}
		}
	}

	stored, err := s.files.List(ctx, "")
	if err != nil {
		return nil, gatewayErr("falha ao listar arquivos armazenados", err)
	}

	result := &CleanupResult{}
	for _, key := range stored {
		if _, ok := referenced[path.Base(key)]; ok {
			continue
		}
		result.OrphansFound++

		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to delete orphan image")
			continue
		}
		result.DeletedCount++
		s.logger.WithField("key", key).Info("Orphan image deleted")
	}

	s.logger.WithFields(logrus.Fields{
		"referenced": len(referenced),
		"stored":     len(stored),
		"orphans":    result.OrphansFound,
		"deleted":    result.DeletedCount,
	}).Info("Orphan image cleanup finished")

	return result, nil
}

// storageKeyFromRef extracts the bucket-relative key from an image
// reference, which may be a bare key or a full public URL.
func storageKeyFromRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if idx := strings.Index(ref, "?"); idx >= 0 {
		ref = ref[:idx]
	}

	const marker = "product-images/"
	if idx := strings.Index(ref, marker); idx >= 0 {
		return ref[idx+len(marker):]
	}

	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}
