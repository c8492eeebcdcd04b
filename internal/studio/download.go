package studio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/storage"
	"github.com/Ryuya330/AI-Kirie-Studio-App/pkg/zip"
)

const maxDownload = 20 << 20

// Saver writes generated images into a FileStore.
type Saver struct {
	store      *storage.FileStore
	httpClient *http.Client
	now        func() time.Time
}

// NewSaver returns a Saver over store.
func NewSaver(store *storage.FileStore, httpClient *http.Client) *Saver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Saver{store: store, httpClient: httpClient, now: time.Now}
}

// Download saves the image behind ref as kirie-<unix-ms>.<ext> and returns
// its path.
func (s *Saver) Download(ctx context.Context, ref string) (string, error) {
	data, mimeType, err := s.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("kirie-%d.%s", s.now().UnixMilli(), Extension(mimeType))
	if _, err := s.store.Write(ctx, key, data); err != nil {
		return "", err
	}
	return s.store.Path(key)
}

// Export zips every history image that can be fetched. Entries that fail are
// skipped; the count of archived images is returned with the archive path.
func (s *Saver) Export(ctx context.Context, entries []HistoryEntry) (string, int, error) {
	assets := make([]zip.Asset, 0, len(entries))
	for _, entry := range entries {
		data, mimeType, err := s.Fetch(ctx, entry.ImageURL)
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, ctx.Err()
			}
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("kirie-%d.%s", entry.Timestamp.UnixMilli(), Extension(mimeType)),
			Modified: entry.Timestamp,
			Data:     data,
		})
	}
	if len(assets) == 0 {
		return "", 0, nil
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		return "", 0, err
	}
	key := fmt.Sprintf("kirie-export-%d.zip", s.now().UnixMilli())
	if _, err := s.store.Write(ctx, key, archive); err != nil {
		return "", 0, err
	}
	path, err := s.store.Path(key)
	return path, len(assets), err
}

// Fetch decodes a data URI or downloads an http(s) URL.
func (s *Saver) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "data:"):
		img, err := domain.ParseImageData(ref)
		if err != nil {
			return nil, "", err
		}
		return img.Data, img.MIMEType, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("download: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("download: status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
		if err != nil {
			return nil, "", fmt.Errorf("download: %w", err)
		}
		mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}
		return data, mimeType, nil
	default:
		return nil, "", fmt.Errorf("download: unsupported image reference")
	}
}

// Extension maps an image mime type to a file extension, png by default.
func Extension(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	default:
		return "png"
	}
}
