package studio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/storage"
)

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStateRecordCapsHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	state, err := Load(ctx, store)
	require.NoError(t, err)
	_, ok := state.Current()
	assert.False(t, ok)

	base := time.Unix(1700000000, 0)
	for i := 0; i < HistoryLimit+5; i++ {
		require.NoError(t, state.Record(ctx, HistoryEntry{
			ImageURL:  fmt.Sprintf("https://img.example/%d.png", i),
			Prompt:    fmt.Sprintf("prompt %d", i),
			Style:     "traditional",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	history := state.History()
	require.Len(t, history, HistoryLimit)
	assert.Equal(t, fmt.Sprintf("prompt %d", HistoryLimit+4), history[0].Prompt)
	assert.Equal(t, "prompt 5", history[HistoryLimit-1].Prompt)
	cur, ok := state.Current()
	require.True(t, ok)
	assert.Equal(t, history[0], cur)

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(history), len(reloaded.History()))
	assert.Equal(t, history[0].ImageURL, reloaded.History()[0].ImageURL)
}

func TestStateClearPersists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	state, err := Load(ctx, store)
	require.NoError(t, err)
	require.NoError(t, state.Record(ctx, HistoryEntry{ImageURL: "https://img.example/a.png"}))
	require.NoError(t, state.Clear(ctx))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, reloaded.History())
	_, ok := reloaded.Current()
	assert.False(t, ok)
}

func TestStateShowAndLanguage(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	state, err := Load(ctx, store)
	require.NoError(t, err)
	require.NoError(t, state.Record(ctx, HistoryEntry{Prompt: "old"}))
	require.NoError(t, state.Record(ctx, HistoryEntry{Prompt: "new"}))

	entry, err := state.Show(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "old", entry.Prompt)
	_, err = state.Show(ctx, 2)
	assert.Error(t, err)

	assert.Equal(t, "ja", state.Language())
	require.NoError(t, state.SetLanguage(ctx, "en-GB"))
	assert.Equal(t, "en", state.Language())
	assert.Equal(t, "No history yet", state.T("history_empty"))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "en", reloaded.Language())
	cur, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "old", cur.Prompt)
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	_, err := store.Write(ctx, "history.json", []byte("{not json"))
	require.NoError(t, err)

	state, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, state.History())
}

func TestClientGenerate(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"imageUrl":"https://img.example/a.png","style":"zen","styleName":"禅","model":"TURBO"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "en", srv.Client())
	gen, err := c.Generate(context.Background(), "moon", "zen")
	require.NoError(t, err)
	assert.Equal(t, "moon", got["prompt"])
	assert.Equal(t, "zen", got["style"])
	assert.Equal(t, "https://img.example/a.png", gen.ImageURL)
	assert.Equal(t, "TURBO", gen.Model)
	assert.Equal(t, "moon", gen.Prompt)
}

func TestClientServerFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"success":false,"error":"replicate: status 401: bad token r8_secret"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "en", srv.Client())
	_, err := c.Generate(context.Background(), "moon", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationFailed))
	assert.Equal(t, "Image generation failed. Please try again", err.Error())
	assert.NotContains(t, err.Error(), "r8_secret")
}

func TestClientValidationMessageKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"success":false,"error":"プロンプトを入力してください"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ja", srv.Client())
	_, err := c.Generate(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, "プロンプトを入力してください", err.Error())
}

func TestClientConvertOmitsEmptyStyle(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"success":true,"imageUrl":"data:image/png;base64,aGVsbG8=","style":"traditional","model":"NANOBANANA","note":"n"}`)
	}))
	defer srv.Close()

	gen, err := NewClient(srv.URL, "ja", srv.Client()).Convert(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	_, hasStyle := got["style"]
	assert.False(t, hasStyle)
	assert.Equal(t, "traditional", gen.Style)
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","aiProviders":["flux"],"styles":[{"id":"zen","name":"禅","ai":"turbo"}]}`)
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL, "ja", srv.Client()).Health(context.Background())
	require.NoError(t, err)
	require.Len(t, h.Styles, 1)
	assert.Equal(t, "zen", h.Styles[0].ID)
}

func TestSaverDownloadDataURI(t *testing.T) {
	store := newStore(t)
	saver := NewSaver(store, nil)
	saver.now = func() time.Time { return time.UnixMilli(1700000000123) }

	ref := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpegbytes"))
	path, err := saver.Download(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "kirie-1700000000123.jpg", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
}

func TestSaverDownloadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		fmt.Fprint(w, "webpbytes")
	}))
	defer srv.Close()

	saver := NewSaver(newStore(t), srv.Client())
	path, err := saver.Download(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".webp"))
}

func TestSaverDownloadRejectsUnknownRef(t *testing.T) {
	saver := NewSaver(newStore(t), nil)
	_, err := saver.Download(context.Background(), "ftp://example.com/a.png")
	assert.Error(t, err)
}

func TestSaverExportSkipsBrokenEntries(t *testing.T) {
	store := newStore(t)
	saver := NewSaver(store, nil)
	saver.now = func() time.Time { return time.UnixMilli(42) }

	svg := domain.SVGRef("<svg/>").String()
	entries := []HistoryEntry{
		{ImageURL: svg, Timestamp: time.UnixMilli(1)},
		{ImageURL: "not-a-ref", Timestamp: time.UnixMilli(2)},
		{ImageURL: "data:image/png;base64,aGVsbG8=", Timestamp: time.UnixMilli(3)},
	}
	path, n, err := saver.Export(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "kirie-export-42.zip", filepath.Base(path))

	_, n, err = saver.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"image/png":     "png",
		"image/jpeg":    "jpg",
		"image/webp":    "webp",
		"image/svg+xml": "svg",
		"":              "png",
	}
	for in, want := range cases {
		assert.Equal(t, want, Extension(in), in)
	}
}
