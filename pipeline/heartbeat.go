package pipeline

import (
	"context"
	"net/http"

	"github.com/mlafeldt/xkcd-vk/httputil"
)

// Heartbeat pings endpoint to signal a successful run to an external monitor.
func Heartbeat(ctx context.Context, client *http.Client, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Add("User-Agent", "xkcd-vk")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &httputil.TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(endpoint, resp)
}
