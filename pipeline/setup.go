package pipeline

import (
	"context"
	"log"
	"net/http"

	"github.com/mlafeldt/xkcd-vk/asset"
	"github.com/mlafeldt/xkcd-vk/config"
	"github.com/mlafeldt/xkcd-vk/vk"
)

// New wires a pipeline from cfg. The returned function releases the VK client.
func New(cfg *config.Config) (*Pipeline, func()) {
	api := cfg.VKClient()

	p := &Pipeline{
		Comics:      cfg.ComicClient(),
		Assets:      &asset.Store{Dir: cfg.ImagesDir, HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout}},
		Uploads:     api,
		Publisher:   vk.NewPublisher(api),
		Destination: cfg.Destination(),
	}

	return p, func() {
		if err := api.Close(); err != nil {
			log.Printf("[DEBUG] closing VK client: %s", err)
		}
	}
}

// Execute runs one pipeline built from cfg and pings the heartbeat endpoint
// on success. A failed heartbeat does not fail the run.
func Execute(ctx context.Context, cfg *config.Config, comicID int) (*Result, error) {
	p, closeFn := New(cfg)
	defer closeFn()

	res, err := p.Run(ctx, comicID)
	if err != nil {
		return nil, err
	}

	if cfg.HeartbeatEndpoint != "" {
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		if err := Heartbeat(ctx, client, cfg.HeartbeatEndpoint); err != nil {
			log.Printf("[ERROR] Heartbeat failed: %s", err)
		}
	}

	return res, nil
}
