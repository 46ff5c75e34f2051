package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TempFile is one staged upload. It lives from Stage until Release.
type TempFile struct {
	Key          string // <uuid>_<sanitized name>
	Path         string
	OriginalName string
	MimeType     string
	Size         int64
}

// ReadAll reads the staged bytes back.
func (t *TempFile) ReadAll() ([]byte, error) {
	b, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "read staged file", err)
	}
	return b, nil
}

// Stager writes uploads into a private temp directory under collision-free names.
type Stager struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
}

func NewStager(dir string, maxBytes int64, logger *zap.Logger) (*Stager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, common.NewAppError(common.CodeConfig, "temp dir is required", common.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, common.NewAppError(common.CodeStorage, fmt.Sprintf("create temp dir %s", dir), err)
	}
	return &Stager{dir: dir, maxBytes: maxBytes, log: logger}, nil
}

func (s *Stager) Dir() string { return s.dir }

// Stage copies src into a new temp file. Uploads larger than the limit are
// rejected and leave nothing behind.
func (s *Stager) Stage(src io.Reader, filename, mimeType string) (*TempFile, error) {
	key := uuid.New().String() + "_" + SafeName(filename)
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "create staged file", err)
	}

	r := src
	if s.maxBytes > 0 {
		r = io.LimitReader(src, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		s.remove(path)
		return nil, common.NewAppError(common.CodeStorage, "write staged file", copyErr)
	case closeErr != nil:
		s.remove(path)
		return nil, common.NewAppError(common.CodeStorage, "close staged file", closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		s.remove(path)
		return nil, common.NewAppError(common.CodeUpload, fmt.Sprintf("file exceeds %d bytes", s.maxBytes), common.ErrTooLarge)
	}

	s.log.Debug("upload.stage.ok", zap.String("key", key), zap.Int64("size", n))
	return &TempFile{
		Key:          key,
		Path:         path,
		OriginalName: filename,
		MimeType:     mimeType,
		Size:         n,
	}, nil
}

// Release deletes the staged file. A file that is already gone is not an error.
func (s *Stager) Release(t *TempFile) error {
	if t == nil {
		return nil
	}
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewAppError(common.CodeStorage, "remove staged file", err)
	}
	s.log.Debug("upload.release.ok", zap.String("key", t.Key))
	return nil
}

// WithTempFile stages src, runs fn, and releases the file on every exit path,
// including a panic in fn. Release failures are logged, never returned.
func (s *Stager) WithTempFile(ctx context.Context, src io.Reader, filename, mimeType string, fn func(*TempFile) error) error {
	tf, err := s.Stage(src, filename, mimeType)
	if err != nil {
		return err
	}
	defer func() {
		if rErr := s.Release(tf); rErr != nil {
			common.LoggerFromContext(ctx, s.log).Warn("upload.release.failed", zap.String("key", tf.Key), zap.Error(rErr))
		}
	}()
	return fn(tf)
}

func (s *Stager) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("upload.cleanup.failed", zap.String("path", path), zap.Error(err))
	}
}

// SafeName reduces an uploaded filename to a single path element of safe characters.
func SafeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = reUnsafe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}
