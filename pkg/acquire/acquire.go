// Package acquire preserves evidence integrity: analysis never runs on the
// original file but on a timestamped working copy whose hashes are recorded
// at acquisition time and can be re-verified later.
package acquire

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Evidence records the provenance of one acquired image.
type Evidence struct {
	OriginalPath string    `json:"original_path"`
	WorkingCopy  string    `json:"working_copy"`
	Size         int64     `json:"size_bytes"`
	AcquiredAt   time.Time `json:"acquired_at"`
	MD5          string    `json:"md5"`
	SHA1         string    `json:"sha1"`
	SHA256       string    `json:"sha256"`
}

// Acquire copies the source image into destDir under a timestamped name and
// returns its provenance record. The three digests are computed in a single
// streaming pass while copying.
func Acquire(sourcePath, destDir string) (*Evidence, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat evidence source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("evidence source is a directory: %s", sourcePath)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create acquisition directory: %w", err)
	}

	now := time.Now()
	base := filepath.Base(sourcePath)
	copyPath := filepath.Join(destDir, fmt.Sprintf("%s_%s", now.Format("20060102_150405"), base))

	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(copyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create working copy: %w", err)
	}
	defer dst.Close()

	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sha256Hash := sha256.New()

	written, err := io.Copy(io.MultiWriter(dst, md5Hash, sha1Hash, sha256Hash), src)
	if err != nil {
		os.Remove(copyPath)
		return nil, fmt.Errorf("failed to copy evidence: %w", err)
	}

	return &Evidence{
		OriginalPath: sourcePath,
		WorkingCopy:  copyPath,
		Size:         written,
		AcquiredAt:   now,
		MD5:          digest(md5Hash),
		SHA1:         digest(sha1Hash),
		SHA256:       digest(sha256Hash),
	}, nil
}

// Verify recomputes the working copy's SHA-256 and compares it with the one
// recorded at acquisition. A mismatch means the copy was altered.
func (e *Evidence) Verify() error {
	f, err := os.Open(e.WorkingCopy)
	if err != nil {
		return fmt.Errorf("failed to open working copy: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash working copy: %w", err)
	}

	if got := digest(h); got != e.SHA256 {
		return fmt.Errorf("integrity check failed: sha256 %s does not match recorded %s", got, e.SHA256)
	}
	return nil
}

func digest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
