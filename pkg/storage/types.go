package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("storage: key not found")

// Store is durable client-side key/value storage.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type DiskStorage struct {
	RootFolder string
	FileName   string
}

func NewDiskStorage(rootFolder, fileName string) *DiskStorage {
	if fileName == "" {
		fileName = defaultStoreFile
	}
	return &DiskStorage{
		RootFolder: rootFolder,
		FileName:   fileName,
	}
}

func (ds *DiskStorage) GetFileName() (string, string) {
	fileName := path.Join(ds.RootFolder, ds.FileName)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}
