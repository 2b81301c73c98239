// Package asset keeps downloaded comic images on local disk for the
// duration of a single run.
package asset

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/mlafeldt/xkcd-vk/httputil"
)

// LocalIOError is a failure to write, read or delete a local image file.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// Store downloads images into Dir.
type Store struct {
	Dir        string
	HTTPClient *http.Client
}

// Asset is an image file owned by the current run.
type Asset struct {
	Path    string
	removed bool
}

// FileName returns the local file name used for the given comic.
func FileName(comicID int, imageURL string) string {
	ext := ".png"
	if u, err := url.Parse(imageURL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("xkcd_comic_%d%s", comicID, ext)
}

// Download fetches imageURL into Dir/name. The file is fully written and
// closed when Download returns; on failure no file is left behind.
func (s *Store) Download(ctx context.Context, imageURL, name string) (*Asset, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, &LocalIOError{Op: "mkdir", Path: s.Dir, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, &httputil.TransportError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(imageURL, resp); err != nil {
		return nil, err
	}

	dest := filepath.Join(s.Dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return nil, &LocalIOError{Op: "create", Path: dest, Err: err}
	}

	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(dest); rerr != nil {
			log.Printf("[ERROR] Failed to remove partial download %s: %s", dest, rerr)
		}
		return nil, &LocalIOError{Op: "write", Path: dest, Err: err}
	}

	return &Asset{Path: dest}, nil
}

// Bytes reads the whole image.
func (a *Asset) Bytes() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, &LocalIOError{Op: "read", Path: a.Path, Err: err}
	}
	return data, nil
}

// Name returns the base name of the image file.
func (a *Asset) Name() string {
	return filepath.Base(a.Path)
}

// Remove deletes the file. Only the first call touches the filesystem.
func (a *Asset) Remove() error {
	if a.removed {
		return nil
	}
	a.removed = true
	if err := os.Remove(a.Path); err != nil {
		return &LocalIOError{Op: "remove", Path: a.Path, Err: err}
	}
	return nil
}

func (s *Store) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}
