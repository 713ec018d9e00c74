package riskmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ArtifactDigest returns the hex sha256 of the file at path.
func ArtifactDigest(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", goerr.Wrap(err, "open model artifact", goerr.V(ModelPathKey, path))
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", goerr.Wrap(err, "hash model artifact", goerr.V(ModelPathKey, path))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyArtifact checks the model file against the digest pinned in a
// manifest. An empty expected digest only checks that the file is readable.
func VerifyArtifact(path, expected string) error {
	actual, err := ArtifactDigest(path)
	if err != nil {
		return err
	}
	expected = strings.ToLower(strings.TrimSpace(expected))
	if expected == "" {
		return nil
	}
	if actual != expected {
		return goerr.Wrap(ErrArtifactMismatch, "model artifact does not match manifest",
			goerr.V(ModelPathKey, path),
			goerr.V(ExpectedSumKey, expected),
			goerr.V(ActualSumKey, actual))
	}
	return nil
}
