package utils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// HashBytes returns the SHA-256 hex digest of raw file content. Identical
// bytes under different filenames produce the same digest; this is the
// dedup identity key for uploaded documents.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

const maxStemLength = 50

// GenerateUniqueFilename derives a storage-safe name for an upload:
// timestamp, a short hash of the original name, and a sanitized stem.
func GenerateUniqueFilename(originalFilename string) string {
	now := time.Now()
	timestamp := now.Format("20060102_150405")

	// The nanosecond salt keeps two same-named uploads in the same
	// second apart.
	nameSum := md5.Sum([]byte(originalFilename + strconv.FormatInt(now.UnixNano(), 10)))
	shortHash := hex.EncodeToString(nameSum[:])[:8]

	ext := filepath.Ext(originalFilename)
	stem := strings.TrimSuffix(originalFilename, ext)
	safeStem := sanitizeStem(stem)

	return timestamp + "_" + shortHash + "_" + safeStem + ext
}

// sanitizeStem keeps alphanumerics, underscore and hyphen, capped in length.
func sanitizeStem(stem string) string {
	var b strings.Builder
	for _, r := range stem {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() >= maxStemLength {
			break
		}
	}
	return b.String()
}
