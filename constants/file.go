package constants

import "strings"

// ScreenshotField is the multipart form field carrying the uploaded image.
const ScreenshotField = "screenshot"

// DefaultMaxUploadBytes bounds a single upload (10 MiB).
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// UnknownValue fills any record field the model could not read.
const UnknownValue = "unknown"

// AllowedExtensions holds the image extensions we know a MIME type for.
var AllowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MimeForExt returns the image MIME type for ext, or application/octet-stream.
func MimeForExt(ext string) string {
	if mt, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}
