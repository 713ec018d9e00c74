package riskmodel_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/evtrisk/riskmodel"
)

func writeArtifact(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "XGB.onnx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func TestArtifactDigest(t *testing.T) {
	path, sum := writeArtifact(t, "not really onnx")
	got, err := riskmodel.ArtifactDigest(path)
	require.NoError(t, err)
	assert.Equal(t, sum, got)
}

func TestVerifyArtifact(t *testing.T) {
	path, sum := writeArtifact(t, "model bytes")

	assert.NoError(t, riskmodel.VerifyArtifact(path, sum))
	assert.NoError(t, riskmodel.VerifyArtifact(path, strings.ToUpper(sum)))
	assert.NoError(t, riskmodel.VerifyArtifact(path, ""))

	err := riskmodel.VerifyArtifact(path, strings.Repeat("0", 64))
	assert.ErrorIs(t, err, riskmodel.ErrArtifactMismatch)

	err = riskmodel.VerifyArtifact(filepath.Join(t.TempDir(), "missing.onnx"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
