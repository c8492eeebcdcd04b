package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"
)

// Asset is one file placed in an archive.
type Asset struct {
	Filename string
	Modified time.Time
	Data     []byte
}

// ArchiveAssets packs assets into a zip. Duplicate names get a numeric
// suffix so no entry is shadowed.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(seen, path.Base(strings.ReplaceAll(asset.Filename, "\\", "/")))
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: asset.Modified}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueName(seen map[string]int, name string) string {
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
