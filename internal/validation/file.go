package validation

import (
	"fmt"
	"mime"
	"strings"
)

// UploadPolicy bounds what may be stored as a file
type UploadPolicy struct {
	MaxBytes     int64
	AllowedTypes []string // Exact types or prefixes ending in "/", e.g. "image/"
}

// Validate checks the declared size and MIME type of an upload
func (p UploadPolicy) Validate(sizeBytes int64, mimeType string) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be positive")
	}

	if sizeBytes > p.MaxBytes {
		maxMB := p.MaxBytes / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return fmt.Errorf("invalid mime type: %q", mimeType)
	}

	if !p.allows(mediaType) {
		return fmt.Errorf("file type not allowed: %s", mediaType)
	}

	return nil
}

func (p UploadPolicy) allows(mediaType string) bool {
	for _, allowed := range p.AllowedTypes {
		allowed = strings.ToLower(allowed)
		if strings.HasSuffix(allowed, "/") {
			if strings.HasPrefix(mediaType, allowed) {
				return true
			}
			continue
		}
		// "application/vnd.openxmlformats-officedocument" covers the .docx/.xlsx/.pptx family
		if mediaType == allowed || strings.HasPrefix(mediaType, allowed+".") {
			return true
		}
	}
	return false
}
