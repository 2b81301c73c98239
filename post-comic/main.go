package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mlafeldt/xkcd-vk/config"
	"github.com/mlafeldt/xkcd-vk/pipeline"
	"github.com/mlafeldt/xkcd-vk/xkcd"
)

// Input is the input passed to the Lambda function.
type Input struct {
	ComicID int `json:"comic_id"`
}

// Output is the output returned by the Lambda function.
type Output struct {
	*xkcd.Comic
	OwnerID    int    `json:"owner_id"`
	MediaID    int    `json:"media_id"`
	PostID     int    `json:"post_id"`
	Attachment string `json:"attachment"`
}

func main() {
	lambda.Start(handler)
}

func handler(ctx context.Context, input Input) (*Output, error) {
	if input.ComicID < 0 {
		return nil, fmt.Errorf("input comic_id %d is invalid", input.ComicID)
	}

	cfg, err := config.Load(ctx, config.NewSSMResolver())
	if err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] config = %s", cfg)

	res, err := pipeline.Execute(ctx, cfg, input.ComicID)
	if err != nil {
		log.Printf("[ERROR] %s", err)
		return nil, err
	}

	log.Printf("[INFO] Posted comic %d as %s", res.Comic.ID, res.Attachment)
	return newOutput(res), nil
}

func newOutput(res *pipeline.Result) *Output {
	return &Output{
		Comic:      res.Comic,
		OwnerID:    res.Post.OwnerID,
		MediaID:    res.Post.MediaID,
		PostID:     res.Post.PostID,
		Attachment: res.Attachment,
	}
}
