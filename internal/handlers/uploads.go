package handlers

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// saveProfileImage stores an uploaded image under <uploadDir>/profile with a
// generated filename and returns the public URL path it will be served from.
func saveProfileImage(uploadDir string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := filepath.Join(uploadDir, "profile")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/profile/" + filename, nil
}

// removeLocalProfileImage deletes a previously uploaded image. External
// avatar URLs are left alone. Best effort only.
func removeLocalProfileImage(uploadDir, imageURL string) {
	if !strings.HasPrefix(imageURL, "/uploads/profile/") {
		return
	}
	_ = os.Remove(filepath.Join(uploadDir, "profile", filepath.Base(imageURL)))
}
