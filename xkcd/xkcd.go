package xkcd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/mlafeldt/xkcd-vk/httputil"
)

// DefaultBaseURL is the public xkcd site.
const DefaultBaseURL = "https://xkcd.com"

// Comic describes an xkcd comic.
type Comic struct {
	ID       int    `json:"num"`
	ImageURL string `json:"img"`
	Caption  string `json:"alt"`
	Title    string `json:"title"`
	Year     string `json:"year,omitempty"`
	Month    string `json:"month,omitempty"`
	Day      string `json:"day,omitempty"`
}

// URL returns the comic's page on the public site.
func (c *Comic) URL() string {
	return fmt.Sprintf("%s/%d/", DefaultBaseURL, c.ID)
}

// Published returns the publication date, or the zero time if unknown.
func (c *Comic) Published() time.Time {
	t, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", c.Year, c.Month, c.Day))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Rand yields uniform integers in [0,n). *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Client fetches comic metadata from the xkcd JSON interface.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Rand       Rand
}

// NewClient returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchLatestID returns the number of the most recent comic.
func (c *Client) FetchLatestID(ctx context.Context) (int, error) {
	comic, err := c.FetchByID(ctx, 0)
	if err != nil {
		return 0, err
	}
	return comic.ID, nil
}

// FetchByID gets the comic with the given number. An id of 0 means the latest comic.
func (c *Client) FetchByID(ctx context.Context, id int) (*Comic, error) {
	if id < 0 {
		return nil, fmt.Errorf("invalid comic id %d", id)
	}

	url := c.BaseURL + "/info.0.json"
	if id > 0 {
		url = fmt.Sprintf("%s/%d/info.0.json", c.BaseURL, id)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &httputil.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(url, resp); err != nil {
		return nil, err
	}

	var comic Comic
	if err := json.NewDecoder(resp.Body).Decode(&comic); err != nil {
		return nil, fmt.Errorf("decode comic %s: %w", url, err)
	}

	if comic.ID < 1 {
		return nil, fmt.Errorf("comic number not found in %s", url)
	}
	if id > 0 && comic.ID != id {
		return nil, fmt.Errorf("requested comic %d but got %d", id, comic.ID)
	}
	if comic.ImageURL == "" {
		return nil, fmt.Errorf("image URL not found in %s", url)
	}

	return &comic, nil
}

// PickRandomID returns a comic number uniformly distributed in [1, latest].
func (c *Client) PickRandomID(ctx context.Context) (int, error) {
	latest, err := c.FetchLatestID(ctx)
	if err != nil {
		return 0, err
	}
	return pick(c.Rand, latest), nil
}

// FetchRecent returns up to n comics, newest first. Numbers the site does not
// serve (like 404) are skipped.
func (c *Client) FetchRecent(ctx context.Context, n int) ([]*Comic, error) {
	latest, err := c.FetchByID(ctx, 0)
	if err != nil {
		return nil, err
	}

	comics := []*Comic{latest}
	for id := latest.ID - 1; id >= 1 && len(comics) < n; id-- {
		comic, err := c.FetchByID(ctx, id)
		if err != nil {
			var te *httputil.TransportError
			if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
				log.Printf("[DEBUG] skipping missing comic %d", id)
				continue
			}
			return nil, err
		}
		comics = append(comics, comic)
	}
	return comics, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func pick(r Rand, latest int) int {
	if latest <= 1 {
		return 1
	}
	if r == nil {
		return rand.Intn(latest) + 1
	}
	return r.Intn(latest) + 1
}
