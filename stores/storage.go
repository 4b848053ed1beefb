package stores

import (
	"os"
	"pos-server/core"
	"pos-server/stores/aws"
	"pos-server/stores/filesystem"
	"pos-server/stores/memory"
	"pos-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// Store is a union interface covering every entity the API persists.
type Store interface {
	core.BusinessStore
	core.UserStore
	core.CatalogStore
	core.TableStore
	core.SaleStore
	core.ShiftStore
	core.ExpenseStore
	core.SupplyStore
}

func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "pos.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}

// GetImageStore selects where uploaded product and logo images live.
func GetImageStore() core.ImageStore {
	storageType := os.Getenv("IMAGE_STORAGE_TYPE")

	storageField := logrus.Fields{
		"imageStorageType": storageType,
	}

	var store core.ImageStore
	switch storageType {
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 image storage")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewImageStore(bucketName)
	case "filesystem":
		basePath := os.Getenv("IMAGE_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data/images"
		}
		storageField["basePath"] = basePath
		store = filesystem.NewImageStore(basePath)
	default:
		store = memory.NewImageStore()
		storageField["imageStorageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use image storage")
	return store
}
