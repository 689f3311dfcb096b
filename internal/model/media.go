package model

import "errors"

const (
	MaxImageSizeBytes  = 5 * 1024 * 1024 // 5MB per profile image
	ProfileImageWidth  = 200
	ProfileImageHeight = 200
	ProfileImageFolder = "avatars"
	ProfileImageExt    = ".jpg"
	ImageCacheControl  = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Domain errors for media operations
var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidImageType   = errors.New("invalid image type")
	ErrStorageUnavailable = errors.New("image storage is not configured")
)

// UploadResult represents the uploaded object location
// URL is the public-facing URL, Key is the object key inside the bucket
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}
