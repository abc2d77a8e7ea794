// Package asset stores inline binary payloads and hands back durable URLs.
package asset

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader accepts an inline image payload (data URI or bare base64) and
// returns a durable URL reference. Failures abort message creation.
type Uploader interface {
	Upload(ctx context.Context, data string) (string, error)
}

var extByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskUploader writes decoded payloads under a local directory served at
// baseURL.
type DiskUploader struct {
	dir     string
	baseURL string
}

// NewDiskUploader ensures the upload directory exists.
func NewDiskUploader(dir, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &DiskUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (u *DiskUploader) Upload(_ context.Context, data string) (string, error) {
	payload, ext, err := splitDataURI(data)
	if err != nil {
		return "", err
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(u.dir, name), decoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", name, err)
	}
	return u.baseURL + "/" + name, nil
}

// splitDataURI separates a "data:<mime>;base64,<payload>" string into payload
// and file extension. Bare base64 input is accepted with a generic extension.
func splitDataURI(data string) (payload, ext string, err error) {
	if !strings.HasPrefix(data, "data:") {
		return data, ".bin", nil
	}

	rest := strings.TrimPrefix(data, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", "", fmt.Errorf("unsupported data URI encoding: %q", meta)
	}

	mime := strings.TrimSuffix(meta, ";base64")
	ext, ok := extByMIME[mime]
	if !ok {
		ext = ".bin"
	}
	return payload, ext, nil
}
