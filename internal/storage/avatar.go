package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"inkwell/internal/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAvatarSize caps uploads at 2 MiB.
const maxAvatarSize = 2 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarStore writes uploaded avatars to local disk under a public static
// prefix and hands back the public path stored on the user record.
type AvatarStore struct {
	dir    string // filesystem directory, e.g. ./web/static/avatars
	prefix string // public URL prefix, e.g. /static/avatars
	logger *zap.Logger
}

func NewAvatarStore(dir, prefix string, logger *zap.Logger) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &AvatarStore{dir: dir, prefix: strings.TrimRight(prefix, "/"), logger: logger}, nil
}

// Save validates the upload against the image allow-list, writes it under a
// uuid name and returns the public path.
func (s *AvatarStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > maxAvatarSize {
		return "", fmt.Errorf("%w: image is too large", apperror.ErrValidation)
	}

	// Sniff the real content type, the client header is not trusted
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: only jpeg, png and webp images are allowed", apperror.ErrValidation)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return s.prefix + "/" + name, nil
}

// Remove deletes a previously saved avatar by its public path. Failures are
// logged and swallowed: the database already points at the new file and a
// stale one on disk is harmless.
func (s *AvatarStore) Remove(publicPath string) {
	name := path.Base(publicPath)
	if name == "." || name == "/" || !strings.HasPrefix(publicPath, s.prefix+"/") {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove old avatar", zap.String("path", publicPath), zap.Error(err))
	}
}
