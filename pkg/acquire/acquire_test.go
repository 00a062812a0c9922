package acquire

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCopiesAndHashes(t *testing.T) {
	content := []byte("forensic evidence payload")
	source := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(source, content, 0644))

	destDir := t.TempDir()
	evidence, err := Acquire(source, destDir)
	require.NoError(t, err)

	assert.Equal(t, source, evidence.OriginalPath)
	assert.Equal(t, int64(len(content)), evidence.Size)
	assert.False(t, evidence.AcquiredAt.IsZero())

	copied, err := os.ReadFile(evidence.WorkingCopy)
	require.NoError(t, err)
	assert.Equal(t, content, copied)

	md5Sum := md5.Sum(content)
	sha1Sum := sha1.Sum(content)
	sha256Sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(md5Sum[:]), evidence.MD5)
	assert.Equal(t, hex.EncodeToString(sha1Sum[:]), evidence.SHA1)
	assert.Equal(t, hex.EncodeToString(sha256Sum[:]), evidence.SHA256)
}

func TestWorkingCopyNameKeepsOriginalBase(t *testing.T) {
	source := filepath.Join(t.TempDir(), "holiday.png")
	require.NoError(t, os.WriteFile(source, []byte("img"), 0644))

	evidence, err := Acquire(source, t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(evidence.WorkingCopy), "holiday.png")
}

func TestVerifyDetectsTampering(t *testing.T) {
	source := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(source, []byte("original bytes"), 0644))

	evidence, err := Acquire(source, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, evidence.Verify())

	require.NoError(t, os.WriteFile(evidence.WorkingCopy, []byte("altered bytes"), 0644))
	assert.Error(t, evidence.Verify())
}

func TestAcquireMissingSource(t *testing.T) {
	_, err := Acquire("/nonexistent/photo.jpg", t.TempDir())
	assert.Error(t, err)
}

func TestAcquireRejectsDirectory(t *testing.T) {
	_, err := Acquire(t.TempDir(), t.TempDir())
	assert.Error(t, err)
}
