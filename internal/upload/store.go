// Package upload validates resume uploads and keeps them in a local
// directory, removing a written file again when the record that should
// reference it is not saved.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"time"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/metrics"
)

const maxNameAttempts = 8

// StoredFile is a file written to the uploads directory.
type StoredFile struct {
	// Filename is the generated name on disk.
	Filename string
	// Path is the public path the file is served under.
	Path     string
	Mimetype string
	Size     int64

	fullPath string
}

type Config struct {
	Dir          string
	PublicPrefix string
	MaxSize      int64
}

type Store struct {
	dir     string
	prefix  string
	maxSize int64
	log     logger.Logger
	now     func() time.Time
}

func NewStore(cfg Config, log logger.Logger) *Store {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/uploads"
	}
	return &Store{
		dir:     cfg.Dir,
		prefix:  cfg.PublicPrefix,
		maxSize: cfg.MaxSize,
		log:     log.WithFields(map[string]interface{}{"component": "upload"}),
		now:     time.Now,
	}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save validates fh and writes it under a "<unix-nanos>-<name>" filename.
// The directory is created on first use. Names are claimed with O_EXCL so
// two uploads never overwrite each other.
func (s *Store) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	contentType, err := ValidateFileHeader(fh, s.maxSize)
	if err != nil {
		metrics.ResumeUploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, apperrors.NewUploadFailedError(fmt.Errorf("create uploads directory: %w", err))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewUploadFailedError(fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	dst, name, err := s.create(SanitizeFilename(fh.Filename))
	if err != nil {
		return nil, apperrors.NewUploadFailedError(err)
	}
	fullPath := filepath.Join(s.dir, name)

	n, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil || n > s.maxSize {
		s.remove(fullPath)
		if err != nil {
			return nil, apperrors.NewUploadFailedError(fmt.Errorf("write upload: %w", err))
		}
		metrics.ResumeUploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		return nil, apperrors.NewFileTooLargeError(s.maxSize)
	}

	return &StoredFile{
		Filename: name,
		Path:     path.Join(s.prefix, name),
		Mimetype: contentType,
		Size:     n,
		fullPath: fullPath,
	}, nil
}

func (s *Store) create(base string) (*os.File, string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("%d-%s", s.now().UnixNano(), base)
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create upload file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("could not allocate a unique name for %q", base)
}

// Commit writes fh and then runs commit with the stored file. If commit
// returns an error or panics the file is removed before Commit returns or
// the panic continues. Removal failures are logged only, so the caller
// always sees commit's own error.
func (s *Store) Commit(fh *multipart.FileHeader, commit func(*StoredFile) error) error {
	sf, err := s.Save(fh)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			metrics.ResumeUploadsTotal.WithLabelValues(metrics.UploadRolledBack).Inc()
			s.Release(sf)
		}
	}()

	if err := commit(sf); err != nil {
		return err
	}
	committed = true
	metrics.ResumeUploadsTotal.WithLabelValues(metrics.UploadAccepted).Inc()
	return nil
}

// Release deletes a stored file, logging instead of returning failures.
func (s *Store) Release(sf *StoredFile) {
	if sf == nil {
		return
	}
	s.remove(sf.fullPath)
}

// ReleasePath deletes a previously stored file by its public path. Paths
// outside the uploads prefix are ignored.
func (s *Store) ReleasePath(publicPath string) {
	dir, name := path.Split(publicPath)
	if path.Clean(dir) != path.Clean(s.prefix) || !IsValidFilename(name) {
		s.log.Warn("refusing to remove file outside uploads directory", map[string]interface{}{"path": publicPath})
		return
	}
	s.remove(filepath.Join(s.dir, name))
}

func (s *Store) remove(fullPath string) {
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		metrics.ResumeCleanupFailures.Inc()
		s.log.Error("failed to remove uploaded file", map[string]interface{}{
			"path":  fullPath,
			"error": err,
		})
		return
	}
	s.log.Debug("removed uploaded file", map[string]interface{}{"path": fullPath})
}
