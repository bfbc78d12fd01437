package service

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"qrpanel/util/common"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// maxUploadSize caps product and profile images at 5 MiB.
const maxUploadSize = 5 << 20

// Stored images are bounded to this box, keeping aspect ratio. Anything
// smaller is left alone.
const (
	maxImageWidth  = 800
	maxImageHeight = 600
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// UploadService validates and stores image uploads. The content type is
// sniffed from the bytes, never trusted from the request, and files get
// random names so uploads cannot collide or be guessed.
type UploadService struct{}

// SaveImage reads an uploaded image, bounds its dimensions, and writes it
// under folder with a random name. Returns the stored path.
func (s *UploadService) SaveImage(file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxUploadSize {
		return "", common.NewErrorf("image exceeds the %d MB limit", maxUploadSize>>20)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadSize {
		return "", common.NewErrorf("image exceeds the %d MB limit", maxUploadSize>>20)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", common.NewError("only JPEG, PNG and GIF images are allowed")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", common.NewError("file is not a valid image")
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxImageWidth || bounds.Dy() > maxImageHeight {
		img = imaging.Fit(img, maxImageWidth, maxImageHeight, imaging.Lanczos)
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(folder, fmt.Sprintf("%s%s", uuid.NewString(), ext))
	if err := imaging.Save(img, path); err != nil {
		return "", err
	}
	return path, nil
}
