package pdf

import (
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the hex SHA3-256 digest of the file at path.
// It lets run history show whether a document changed between runs.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return "", &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", &OpenError{Path: path, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
