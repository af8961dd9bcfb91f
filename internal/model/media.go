package model

import "errors"

// Avatar upload constants
const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024 // 5MB
	AvatarWidth        = 96
	AvatarHeight       = 96
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	ContentTypeJPEG    = "image/jpeg"
	AvatarCacheControl = "public, max-age=31536000"
)

// allowedImageTypes are the content types accepted for avatar uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType reports whether contentType may be uploaded as an avatar.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

// UploadResult holds the public URL and storage key of an uploaded object.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Media errors
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// Error codes for media failures
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)
