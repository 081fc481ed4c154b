package blob

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"techconnect/internal/domain"
)

type localStore struct {
	dir     string
	baseURL string
}

// NewLocalStore returns a BlobStore that writes uploads to dir and serves them
// under baseURL/uploads/. The directory is created if it does not exist.
func NewLocalStore(dir, baseURL string) (domain.BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *localStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) > domain.MaxBlobSize {
		return "", domain.ErrBlobTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.ErrBlobNotAnImage
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeFilename(filename))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.baseURL + "/uploads/" + name, nil
}

// sanitizeFilename strips path components and anything outside a conservative
// character set so uploaded names cannot escape the upload directory.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
