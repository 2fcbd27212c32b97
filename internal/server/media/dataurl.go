// Package media decodes uploaded images and stores them in S3-compatible
// object storage.
package media

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

var (
	errInvalidImage = common.Validation("Invalid image data")
	errImageTooBig  = common.Validation("Image is too large")
)

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
}

// Ext returns the file extension used for the storage key.
func (i Image) Ext() string {
	switch i.ContentType {
	case "image/jpeg":
		return "jpg"
	case "image/x-icon":
		return "ico"
	}
	_, sub, _ := strings.Cut(i.ContentType, "/")
	if sub == "" {
		return "bin"
	}
	return sub
}

// DecodeImage accepts either a data URL ("data:image/png;base64,....") or a
// bare base64 string. The content type is sniffed from the bytes; the type
// declared in the data URL is not trusted. maxBytes <= 0 disables the limit.
func DecodeImage(s string, maxBytes int64) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errInvalidImage
	}

	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(s[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, errInvalidImage
		}
		payload = data
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, errImageTooBig
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errInvalidImage
		}
	}
	if len(data) == 0 {
		return nil, errInvalidImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, errImageTooBig
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, errInvalidImage
	}

	return &Image{Data: data, ContentType: ct}, nil
}
