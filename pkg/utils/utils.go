package utils

import (
	"crypto/rand"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrNotAnImage      = errors.New("uploaded file is not an image")
	ErrNotAnAudioFile  = errors.New("uploaded file is not an audio recording")
	audioExtensions    = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".webm": true}
	imageExtensions    = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
	defaultMaxImage    = int64(5 * 1024 * 1024)
	defaultMaxRecorded = int64(25 * 1024 * 1024)
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateAudioFile(file *multipart.FileHeader) error
	ReadFile(file *multipart.FileHeader) ([]byte, error)
}

type utils struct {
	maxImageSize int64
	maxAudioSize int64
}

func New() IUtils {
	return &utils{
		maxImageSize: defaultMaxImage,
		maxAudioSize: defaultMaxRecorded,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxImageSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !strings.HasPrefix(contentType, "image/") && !imageExtensions[ext] {
		return ErrNotAnImage
	}

	return nil
}

// ValidateAudioFile accepts audio/* uploads, plus octet-stream uploads whose
// extension is a known recording format (some browsers send no audio type).
func (u *utils) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxAudioSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !strings.HasPrefix(contentType, "audio/") && !audioExtensions[ext] {
		return ErrNotAnAudioFile
	}

	return nil
}

func (u *utils) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}
