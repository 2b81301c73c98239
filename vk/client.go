// Package vk talks to the VK API: photo upload sessions, wall photos and wall posts.
package vk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/mlafeldt/xkcd-vk/httputil"
)

const (
	DefaultBaseURL = "https://api.vk.com/method/"
	DefaultVersion = "5.131"
)

// Credentials are attached to every API method call.
type Credentials struct {
	AccessToken string
	Version     string
}

// Client calls VK API methods.
type Client struct {
	BaseURL     string
	Credentials Credentials

	http *resty.Client
}

// NewClient returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if creds.Version == "" {
		creds.Version = DefaultVersion
	}

	client := resty.New().
		SetRetryCount(0).
		SetTimeout(timeout).
		SetHeader("User-Agent", "xkcd-vk")

	return &Client{
		BaseURL:     baseURL,
		Credentials: creds,
		http:        client,
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

// NegotiateUploadTarget asks photos.getWallUploadServer for a fresh upload URL.
func (c *Client) NegotiateUploadTarget(ctx context.Context) (*UploadTarget, error) {
	raw, err := c.call(ctx, "GET", "photos.getWallUploadServer", nil)
	if err != nil {
		return nil, err
	}

	var target UploadTarget
	if err := json.Unmarshal(raw, &target); err != nil {
		return nil, fmt.Errorf("decode upload server: %w", err)
	}
	if target.UploadURL == "" {
		return nil, &APIError{Code: UnknownErrorCode, Message: "upload_url missing from response"}
	}
	return &target, nil
}

type uploadResponse struct {
	Photo  *string `json:"photo"`
	Server *int    `json:"server"`
	Hash   *string `json:"hash"`
}

// TransferAsset posts data as the multipart "photo" field to target.
func (c *Client) TransferAsset(ctx context.Context, target *UploadTarget, filename string, data []byte) (*UploadedAsset, error) {
	if target == nil || target.UploadURL == "" {
		return nil, fmt.Errorf("no upload target negotiated")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("photo", filename, bytes.NewReader(data)).
		Post(target.UploadURL)
	if err != nil {
		return nil, &httputil.TransportError{URL: target.UploadURL, Err: err}
	}

	body, err := readBody(target.UploadURL, resp)
	if err != nil {
		return nil, err
	}

	if _, err := Validate(body); err != nil {
		return nil, err
	}

	var ur uploadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	switch {
	case ur.Photo == nil || *ur.Photo == "" || *ur.Photo == "[]":
		return nil, &APIError{Code: UnknownErrorCode, Message: "upload response has no photo"}
	case ur.Server == nil:
		return nil, &APIError{Code: UnknownErrorCode, Message: "upload response has no server"}
	case ur.Hash == nil || *ur.Hash == "":
		return nil, &APIError{Code: UnknownErrorCode, Message: "upload response has no hash"}
	}

	return &UploadedAsset{Photo: *ur.Photo, Server: *ur.Server, Hash: *ur.Hash}, nil
}

// SaveWallPhoto binds an uploaded asset and its caption to a wall photo.
func (c *Client) SaveWallPhoto(ctx context.Context, asset *UploadedAsset, caption string) (*SavedPhoto, error) {
	raw, err := c.call(ctx, "POST", "photos.saveWallPhoto", map[string]string{
		"photo":   asset.Photo,
		"server":  strconv.Itoa(asset.Server),
		"hash":    asset.Hash,
		"caption": caption,
	})
	if err != nil {
		return nil, err
	}

	var photos []SavedPhoto
	if err := json.Unmarshal(raw, &photos); err != nil {
		return nil, fmt.Errorf("decode saved photo: %w", err)
	}
	if len(photos) == 0 {
		return nil, &APIError{Code: UnknownErrorCode, Message: "photos.saveWallPhoto returned no photo"}
	}
	return &photos[0], nil
}

// WallPostParams are the arguments of wall.post.
type WallPostParams struct {
	OwnerID     int
	FromGroup   bool
	Attachments string
	Message     string
}

// WallPost publishes a post and returns its id.
func (c *Client) WallPost(ctx context.Context, p WallPostParams) (int, error) {
	fromGroup := "0"
	if p.FromGroup {
		fromGroup = "1"
	}

	raw, err := c.call(ctx, "POST", "wall.post", map[string]string{
		"owner_id":    strconv.Itoa(p.OwnerID),
		"from_group":  fromGroup,
		"attachments": p.Attachments,
		"message":     p.Message,
	})
	if err != nil {
		return 0, err
	}

	var postID int
	if err := json.Unmarshal(raw, &postID); err == nil {
		return postID, nil
	}
	var post struct {
		PostID int `json:"post_id"`
	}
	if err := json.Unmarshal(raw, &post); err != nil {
		return 0, fmt.Errorf("decode wall post: %w", err)
	}
	return post.PostID, nil
}

// call invokes an API method and returns the validated "response" member.
func (c *Client) call(ctx context.Context, httpMethod, method string, params map[string]string) (json.RawMessage, error) {
	values := map[string]string{
		"access_token": c.Credentials.AccessToken,
		"v":            c.Credentials.Version,
	}
	for k, v := range params {
		values[k] = v
	}

	endpoint := c.BaseURL + method
	req := c.http.R().SetContext(ctx)

	var (
		resp *resty.Response
		err  error
	)
	if httpMethod == "GET" {
		resp, err = req.SetQueryParams(values).Get(endpoint)
	} else {
		resp, err = req.SetFormData(values).Post(endpoint)
	}
	if err != nil {
		return nil, &httputil.TransportError{URL: endpoint, Err: c.redact(err)}
	}

	body, err := readBody(endpoint, resp)
	if err != nil {
		return nil, err
	}

	payload, err := Validate(body)
	if err != nil {
		return nil, err
	}

	raw, ok := payload["response"]
	if !ok {
		return nil, &APIError{Code: UnknownErrorCode, Message: "response missing"}
	}
	return raw, nil
}

// redact keeps the access token out of the error of a failed request.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		stripped := ""
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			stripped = u.String()
		}
		err = &url.Error{Op: ue.Op, URL: stripped, Err: ue.Err}
	}

	token := c.Credentials.AccessToken
	if token != "" && strings.Contains(err.Error(), token) {
		return errors.New(strings.ReplaceAll(err.Error(), token, "***"))
	}
	return err
}

// readBody checks the HTTP status before anything looks at the body.
func readBody(endpoint string, resp *resty.Response) ([]byte, error) {
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if !httputil.IsSuccess(resp.StatusCode()) {
		return nil, &httputil.TransportError{URL: endpoint, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("empty response from %s", endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.TransportError{URL: endpoint, Err: err}
	}
	return body, nil
}
