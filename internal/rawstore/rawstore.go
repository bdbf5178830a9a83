// Package rawstore keeps uploaded files on disk: the immutable raw copy that
// replay starts from, and the cleaned copy written on save.
package rawstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/export"
	"go-etl-builder/internal/ingest"
	"go-etl-builder/internal/model"
)

// ErrNotFound is returned when a source has no file on disk
var ErrNotFound = errors.New("file not found")

// FileStore handles source file organization and path management
type FileStore struct {
	BaseDir string
	logger  *logrus.Logger
}

// NewFileStore creates a file store rooted at baseDir
func NewFileStore(baseDir string, logger *logrus.Logger) *FileStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileStore{BaseDir: baseDir, logger: logger}
}

// EnsureDir makes sure the base directory exists
func (fs *FileStore) EnsureDir() error {
	return os.MkdirAll(fs.BaseDir, 0755)
}

// RawPath is where the raw upload of a source lives
func (fs *FileStore) RawPath(sourceID int64, sourceType string) string {
	ext := "csv"
	if sourceType == model.SourceTypeJSON {
		ext = "json"
	}
	return filepath.Join(fs.BaseDir, fmt.Sprintf("source_%d.%s", sourceID, ext))
}

// CleanPath is where the saved cleaned copy of a source lives
func (fs *FileStore) CleanPath(sourceID int64) string {
	return filepath.Join(fs.BaseDir, fmt.Sprintf("source_%d_clean.csv", sourceID))
}

// SaveRaw stores the uploaded bytes verbatim and returns the path
func (fs *FileStore) SaveRaw(sourceID int64, sourceType string, content []byte) (string, error) {
	if err := fs.EnsureDir(); err != nil {
		return "", fmt.Errorf("failed to create sources directory: %w", err)
	}
	path := fs.RawPath(sourceID, sourceType)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save raw file: %w", err)
	}
	fs.logger.WithFields(logrus.Fields{
		"source_id": sourceID,
		"path":      path,
		"bytes":     len(content),
	}).Info("Saved raw file")
	return path, nil
}

// ReadRaw parses the raw file of a source with the options it was uploaded with
func (fs *FileStore) ReadRaw(sourceID int64, sourceType string, opts ingest.Options) (*model.Dataset, error) {
	path := fs.RawPath(sourceID, sourceType)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read raw file: %w", err)
	}
	ds, err := ingest.Read(bytes.NewReader(content), sourceType, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse raw file %s: %w", path, err)
	}
	return ds, nil
}

// SaveClean writes the dataset as the cleaned CSV of a source. The raw file is left alone.
func (fs *FileStore) SaveClean(sourceID int64, ds *model.Dataset) (*export.Result, error) {
	res, err := export.ToFile(fs.CleanPath(sourceID), ds)
	if err != nil {
		return nil, fmt.Errorf("failed to save cleaned file: %w", err)
	}
	fs.logger.WithFields(logrus.Fields{
		"source_id": sourceID,
		"path":      res.Path,
		"rows":      res.RecordCount,
	}).Info("Saved cleaned file")
	return res, nil
}

// DownloadPath prefers the cleaned copy and falls back to the raw file
func (fs *FileStore) DownloadPath(sourceID int64, sourceType string) (string, bool, error) {
	if clean := fs.CleanPath(sourceID); fileExists(clean) {
		return clean, true, nil
	}
	if raw := fs.RawPath(sourceID, sourceType); fileExists(raw) {
		return raw, false, nil
	}
	return "", false, fmt.Errorf("%w: source %d", ErrNotFound, sourceID)
}

// Delete removes every file of a source. Missing files are not an error.
func (fs *FileStore) Delete(sourceID int64) error {
	paths := []string{
		fs.RawPath(sourceID, model.SourceTypeCSV),
		fs.RawPath(sourceID, model.SourceTypeJSON),
		fs.CleanPath(sourceID),
	}
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete files of source %d: %w", sourceID, errors.Join(errs...))
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SourceLookup returns the metadata of a source
type SourceLookup interface {
	GetSource(ctx context.Context, id int64) (*model.DataSource, error)
}

// Loader reads the raw dataset of a source for replay, using its recorded source type and skip rows
type Loader struct {
	files   *FileStore
	sources SourceLookup
}

// NewLoader creates a raw loader
func NewLoader(files *FileStore, sources SourceLookup) *Loader {
	return &Loader{files: files, sources: sources}
}

// LoadRaw implements pipeline.RawLoader
func (l *Loader) LoadRaw(ctx context.Context, sourceID int64) (*model.Dataset, error) {
	src, err := l.sources.GetSource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up source %d: %w", sourceID, err)
	}
	return l.files.ReadRaw(sourceID, src.SourceType, ingest.Options{SkipRows: src.SkipRows})
}
