package filesystem

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pos-server/core"

	"github.com/sirupsen/logrus"
)

type fsImageStore struct {
	basePath string
}

// NewImageStore creates a filesystem-backed image store. Images live under
// basePath/<businessID>/<key>.
func NewImageStore(basePath string) *fsImageStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create image base directory: %v", err)
	}
	return &fsImageStore{basePath: basePath}
}

func (s *fsImageStore) businessPath(businessID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d", businessID))
}

// imagePath resolves a key inside the business directory and rejects keys
// that would escape it.
func (s *fsImageStore) imagePath(businessID int64, key string) (string, error) {
	businessPath := s.businessPath(businessID)
	filePath := filepath.Join(businessPath, key)

	absBusinessPath, err := filepath.Abs(businessPath)
	if err != nil {
		return "", err
	}
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absFilePath, absBusinessPath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid image key: access denied")
	}
	return absFilePath, nil
}

func (s *fsImageStore) SaveImage(_ context.Context, businessID int64, key string, data []byte) error {
	filePath, err := s.imagePath(businessID, key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"business_id": businessID, "image_key": key, "path": filePath})

	if err := os.MkdirAll(s.businessPath(businessID), 0755); err != nil {
		log.WithError(err).Error("Failed to create business image directory")
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write image file")
		return err
	}
	log.Info("Image saved")
	return nil
}

func (s *fsImageStore) GetImage(_ context.Context, businessID int64, key string) ([]byte, error) {
	filePath, err := s.imagePath(businessID, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		logrus.WithFields(logrus.Fields{"business_id": businessID, "image_key": key}).
			WithError(err).Error("Failed to read image file")
		return nil, err
	}
	return data, nil
}

func (s *fsImageStore) DeleteImage(_ context.Context, businessID int64, key string) error {
	filePath, err := s.imagePath(businessID, key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return err
	}
	return nil
}
