package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageBytes = 5 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaStore keeps uploaded files on local disk under Root. Stored names are
// relative paths that are served below URL.
type MediaStore struct {
	Root string
	URL  string
}

func NewMediaStore(root, url string) *MediaStore {
	return &MediaStore{Root: root, URL: url}
}

// SaveUserImage stores an uploaded image and returns its relative path.
func (m *MediaStore) SaveUserImage(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", fieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if fh.Size > maxImageBytes {
		return "", fieldError("image", "The image may not be larger than 5 MB.")
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := path.Join("users", uuid.NewString()+ext)
	dst := filepath.Join(m.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are ignored.
func (m *MediaStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(m.Root, filepath.FromSlash(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
