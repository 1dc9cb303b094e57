package services

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

var (
	ErrInvalidFileType = errors.New("invalid file type. Only PDF, DOC, DOCX, and TXT files are allowed")
	ErrFileTooLarge    = errors.New("file too large")
)

var extensionMIMETypes = map[string]string{
	".pdf":  MIMEPDF,
	".doc":  MIMEDoc,
	".docx": MIMEDocx,
	".txt":  MIMEText,
}

var mimeExtensions = map[string]string{
	MIMEPDF:  ".pdf",
	MIMEDoc:  ".doc",
	MIMEDocx: ".docx",
	MIMEText: ".txt",
}

type StorageService interface {
	EnsureUploadDir() error
	// ResolveMIMEType validates size and type and returns the canonical MIME
	// type for the file.
	ResolveMIMEType(filename, contentType string, size int64) (string, error)
	Save(r io.Reader, mimeType string) (string, error)
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	Delete(path string) error
	MaxFileSize() int64
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *storageService) ResolveMIMEType(filename, contentType string, size int64) (string, error) {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return "", fmt.Errorf("%w. Maximum size is %dMB", ErrFileTooLarge, s.maxFileSize/(1024*1024))
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if _, ok := mimeExtensions[mediaType]; ok {
			return mediaType, nil
		}
	}

	// Browsers often send application/octet-stream for .doc and .docx
	ext := strings.ToLower(filepath.Ext(filename))
	if mimeType, ok := extensionMIMETypes[ext]; ok {
		return mimeType, nil
	}

	return "", ErrInvalidFileType
}

// Save writes the stream under a generated name and returns its path.
func (s *storageService) Save(r io.Reader, mimeType string) (string, error) {
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		return "", ErrInvalidFileType
	}

	filePath := filepath.Join(s.uploadPath, uuid.New().String()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	_, copyErr := io.Copy(dst, r)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

func (s *storageService) Open(path string) (io.ReadCloser, error) {
	if err := s.checkPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *storageService) ReadFile(path string) ([]byte, error) {
	if err := s.checkPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete is idempotent: a missing file is not an error.
func (s *storageService) Delete(path string) error {
	if err := s.checkPath(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) checkPath(path string) error {
	root, err := filepath.Abs(s.uploadPath)
	if err != nil {
		return fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %q is outside the upload directory", path)
	}
	return nil
}

// MIMETypeForPath maps a stored file back to its MIME type.
func MIMETypeForPath(path string) string {
	if mimeType, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}
