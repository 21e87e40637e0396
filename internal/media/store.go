// Package media stores uploaded post images on local disk under a
// configurable root, with collision-free generated names.
package media

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
)

// allowedExtensions is the set of image extensions accepted for upload.
var allowedExtensions = map[string]bool{
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

// Store writes uploaded files under root/posts/.
type Store struct {
	root string
}

// NewStore creates the store and its directory tree.
func NewStore(root string) (*Store, error) {
	dir := filepath.Join(root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// Save persists the uploaded file under a uuid name, keeping the original
// extension. Returns the path relative to the store root, e.g.
// "posts/3f1a....png".
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("unsupported image type")
	}

	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	rel := filepath.Join("posts", uuid.NewString()+ext)
	dst, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", models.NewInternalError(err)
	}
	return filepath.ToSlash(rel), nil
}

// Remove deletes a previously saved file. A missing file is not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}
