package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/bytedance/sonic"
)

const defaultStoreFile = "catalog-store.json"

// DiskStore keeps all keys in a single JSON document on disk.
type DiskStore struct {
	*DiskStorage
	mu sync.Mutex
}

func NewDiskStore(rootFolder, fileName string) (*DiskStore, error) {
	if rootFolder != "" {
		if err := os.MkdirAll(rootFolder, 0o755); err != nil {
			return nil, err
		}
	}
	return &DiskStore{DiskStorage: NewDiskStorage(rootFolder, fileName)}, nil
}

func (d *DiskStore) Get(_ context.Context, key string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := d.load()
	if err != nil {
		return "", err
	}
	value, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (d *DiskStore) Set(_ context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := d.load()
	if err != nil {
		return err
	}
	data[key] = value
	return d.save(data)
}

func (d *DiskStore) load() (map[string]string, error) {
	name, _ := d.GetFileName()
	data := make(map[string]string)
	file, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	err = sonic.ConfigDefault.NewDecoder(file).Decode(&data)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

func (d *DiskStore) save(data map[string]string) error {
	fileName, tmpFileName := d.GetFileName()

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	err = sonic.ConfigDefault.NewEncoder(file).Encode(data)
	file.Close()
	if err != nil {
		os.Remove(tmpFileName)
		return err
	}

	return os.Rename(tmpFileName, fileName)
}
