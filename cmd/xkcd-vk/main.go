package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/mlafeldt/xkcd-vk/config"
	"github.com/mlafeldt/xkcd-vk/pipeline"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xkcd-vk [-comic N]")
		fmt.Fprintln(os.Stderr, "Posts a random xkcd comic to a VK community wall.")
		flag.PrintDefaults()
	}
	comicID := flag.Int("comic", 0, "Comic number to post (0 picks a random one)")
	flag.Parse()

	if *comicID < 0 {
		log.Fatalf("[ERROR] invalid comic number %d", *comicID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *comicID); err != nil {
		log.Printf("[ERROR] %s", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, comicID int) error {
	cfg, err := config.Load(ctx, config.NewSSMResolver())
	if err != nil {
		return err
	}
	log.Printf("[DEBUG] config = %s", cfg)

	res, err := pipeline.Execute(ctx, cfg, comicID)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Posted comic %d %q (%s)", res.Comic.ID, res.Comic.Title, res.Attachment)
	return nil
}
