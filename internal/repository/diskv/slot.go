// Package diskv stores slots as files under a base directory.
package diskv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"github.com/jwalitptl/clinic-calendar/internal/repository"
)

const defaultCacheSize = 1024 * 1024 // 1MB

type Slot struct {
	d        *diskv.Diskv
	basePath string
}

// NewSlot opens (and lazily creates) a slot directory. A leading ~ is
// expanded to the user's home.
func NewSlot(basePath string) (*Slot, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("storage path is empty")
	}
	expanded, err := homedir.Expand(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand storage path: %w", err)
	}
	return &Slot{
		d: diskv.New(diskv.Options{
			BasePath:          expanded,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      defaultCacheSize,
			FilePerm:          0600,
			PathPerm:          0700,
		}),
		basePath: expanded,
	}, nil
}

func (s *Slot) BasePath() string {
	return s.basePath
}

func (s *Slot) Read(_ context.Context, key string) ([]byte, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return val, nil
}

func (s *Slot) Write(_ context.Context, key string, value []byte) error {
	if err := s.d.Write(key, value); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; every Write is already on disk.
func (s *Slot) Close() error {
	return nil
}

// Keys are flat file names; dotted suffixes such as ".backup" stay in the
// file name.
func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{FileName: s + ".json"}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.TrimSuffix(pathKey.FileName, ".json")
}
