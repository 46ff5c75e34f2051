package upload_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/upload"
)

func newStager(t *testing.T, max int64) *upload.Stager {
	t.Helper()
	s, err := upload.NewStager(filepath.Join(t.TempDir(), "staging"), max, nil)
	require.NoError(t, err)
	return s
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestStageAndRelease(t *testing.T) {
	s := newStager(t, 1024)
	tf, err := s.Stage(strings.NewReader("png-bytes"), "../../etc/My Shot.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, s.Dir(), filepath.Dir(tf.Path))
	assert.True(t, strings.HasSuffix(tf.Key, "_My_Shot.png"), tf.Key)
	assert.Equal(t, "image/png", tf.MimeType)
	assert.Equal(t, int64(9), tf.Size)

	b, err := tf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	require.NoError(t, s.Release(tf))
	assert.NoFileExists(t, tf.Path)
	// second release is a no-op
	require.NoError(t, s.Release(tf))
	require.NoError(t, s.Release(nil))
}

func TestStageTooLarge(t *testing.T) {
	s := newStager(t, 8)
	_, err := s.Stage(bytes.NewReader(make([]byte, 9)), "big.png", "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTooLarge)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestStageUniqueKeys(t *testing.T) {
	s := newStager(t, 0)
	var wg sync.WaitGroup
	keys := make([]string, 20)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tf, err := s.Stage(strings.NewReader("x"), "same.png", "image/png")
			if assert.NoError(t, err) {
				keys[i] = tf.Key
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
	assert.Len(t, dirEntries(t, s.Dir()), len(keys))
}

func TestWithTempFileReleasesOnEveryPath(t *testing.T) {
	s := newStager(t, 1024)
	ctx := context.Background()

	var path string
	err := s.WithTempFile(ctx, strings.NewReader("ok"), "a.png", "image/png", func(tf *upload.TempFile) error {
		path = tf.Path
		assert.FileExists(t, tf.Path)
		return nil
	})
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	boom := errors.New("boom")
	err = s.WithTempFile(ctx, strings.NewReader("fail"), "b.png", "image/png", func(tf *upload.TempFile) error {
		path = tf.Path
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, path)

	// fn deleting the file itself must not turn into a secondary failure
	err = s.WithTempFile(ctx, strings.NewReader("gone"), "c.png", "image/png", func(tf *upload.TempFile) error {
		return os.Remove(tf.Path)
	})
	assert.NoError(t, err)

	assert.Panics(t, func() {
		_ = s.WithTempFile(ctx, strings.NewReader("panic"), "d.png", "image/png", func(tf *upload.TempFile) error {
			path = tf.Path
			panic("unexpected")
		})
	})
	assert.NoFileExists(t, path)

	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "shot.png", upload.SafeName("shot.png"))
	assert.Equal(t, "passwd", upload.SafeName("../../etc/passwd"))
	assert.Equal(t, "evil.png", upload.SafeName(`C:\Users\me\evil.png`))
	assert.Equal(t, "upload", upload.SafeName(""))
	assert.Equal(t, "upload", upload.SafeName("/"))
	assert.Equal(t, "my_file_1_.jpg", upload.SafeName("my file (1).jpg"))
}
