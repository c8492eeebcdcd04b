package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ImageKind discriminates the shapes an image reference can take.
type ImageKind string

const (
	ImageKindURL    ImageKind = "url"
	ImageKindInline ImageKind = "inline"
	ImageKindSVG    ImageKind = "svg"
)

// ImageRef is the normalized image handed back by every provider adapter.
type ImageRef struct {
	Kind     ImageKind
	URL      string
	Data     []byte
	MIMEType string
	SVG      string
}

// URLRef wraps a provider hosted image.
func URLRef(url string) ImageRef {
	return ImageRef{Kind: ImageKindURL, URL: url}
}

// InlineRef wraps raw image bytes. An empty mime type is sniffed.
func InlineRef(data []byte, mimeType string) ImageRef {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return ImageRef{Kind: ImageKindInline, Data: data, MIMEType: mimeType}
}

// SVGRef wraps an SVG document.
func SVGRef(svg string) ImageRef {
	return ImageRef{Kind: ImageKindSVG, SVG: svg, MIMEType: "image/svg+xml"}
}

// IsZero reports whether the reference points at nothing.
func (r ImageRef) IsZero() bool {
	switch r.Kind {
	case ImageKindURL:
		return strings.TrimSpace(r.URL) == ""
	case ImageKindInline:
		return len(r.Data) == 0
	case ImageKindSVG:
		return strings.TrimSpace(r.SVG) == ""
	default:
		return true
	}
}

// String renders the reference as something a browser can load: the hosted
// URL or a data URI.
func (r ImageRef) String() string {
	switch r.Kind {
	case ImageKindURL:
		return r.URL
	case ImageKindInline:
		return "data:" + r.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
	case ImageKindSVG:
		return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(r.SVG))
	default:
		return ""
	}
}

// SourceImage is an uploaded picture forwarded to providers that accept one.
type SourceImage struct {
	Data     []byte
	MIMEType string
}

// ParseImageData accepts either a data URI or bare base64 and returns the
// decoded bytes with their mime type.
func ParseImageData(raw string) (*SourceImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidImageInput
	}
	mimeType := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data uri", ErrInvalidImageInput)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: data uri is not base64", ErrInvalidImageInput)
		}
		mimeType = strings.TrimSuffix(meta, ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImageInput, err)
		}
	}
	if len(data) == 0 {
		return nil, errors.Join(ErrInvalidImageInput, errors.New("empty payload"))
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &SourceImage{Data: data, MIMEType: mimeType}, nil
}
