package asset_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlafeldt/xkcd-vk/asset"
	"github.com/mlafeldt/xkcd-vk/httputil"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "xkcd_comic_42.png", asset.FileName(42, "https://imgs.xkcd.com/comics/answer.png"))
	assert.Equal(t, "xkcd_comic_1.jpg", asset.FileName(1, "https://imgs.xkcd.com/comics/barrel_cropped_(1).jpg"))
	assert.Equal(t, "xkcd_comic_7.png", asset.FileName(7, "http://x/noext"))
}

func TestDownloadAndRemove(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PNGDATA"))
	}))
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "images")
	s := &asset.Store{Dir: dir}

	a, err := s.Download(context.Background(), ts.URL+"/42.png", "xkcd_comic_42.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "xkcd_comic_42.png"), a.Path)
	assert.Equal(t, "xkcd_comic_42.png", a.Name())
	assert.FileExists(t, a.Path)

	data, err := a.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), data)

	require.NoError(t, a.Remove())
	assert.NoFileExists(t, a.Path)

	// second call is a no-op
	assert.NoError(t, a.Remove())
}

func TestDownloadHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	dir := t.TempDir()
	s := &asset.Store{Dir: dir}

	_, err := s.Download(context.Background(), ts.URL+"/x.png", "x.png")
	var te *httputil.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusGone, te.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveMissingFile(t *testing.T) {
	a := &asset.Asset{Path: filepath.Join(t.TempDir(), "missing.png")}

	err := a.Remove()
	var le *asset.LocalIOError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "remove", le.Op)
}

func TestBytesMissingFile(t *testing.T) {
	a := &asset.Asset{Path: filepath.Join(t.TempDir(), "missing.png")}

	_, err := a.Bytes()
	var le *asset.LocalIOError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "read", le.Op)
}
