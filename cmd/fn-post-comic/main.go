package main

import (
	"context"
	"encoding/json"
	"io"
	"log"

	fdk "github.com/fnproject/fdk-go"

	"github.com/mlafeldt/xkcd-vk/config"
	"github.com/mlafeldt/xkcd-vk/pipeline"
)

type input struct {
	ComicID int `json:"comic_id"`
}

type output struct {
	ComicID    int    `json:"comic_id"`
	Attachment string `json:"attachment,omitempty"`
	PostID     int    `json:"post_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func main() {
	fdk.Handle(fdk.HandlerFunc(handler))
}

func handler(ctx context.Context, in io.Reader, out io.Writer) {
	var req input
	if err := json.NewDecoder(in).Decode(&req); err != nil && err != io.EOF {
		respond(out, 400, output{Error: err.Error()})
		return
	}

	cfg, err := config.Load(ctx, config.NewSSMResolver())
	if err != nil {
		respond(out, 500, output{ComicID: req.ComicID, Error: err.Error()})
		return
	}

	res, err := pipeline.Execute(ctx, cfg, req.ComicID)
	if err != nil {
		log.Printf("[ERROR] %s", err)
		respond(out, 502, output{ComicID: req.ComicID, Error: err.Error()})
		return
	}

	respond(out, 200, output{
		ComicID:    res.Comic.ID,
		Attachment: res.Attachment,
		PostID:     res.Post.PostID,
	})
}

func respond(out io.Writer, status int, body output) {
	fdk.SetHeader(out, "Content-Type", "application/json")
	fdk.WriteStatus(out, status)
	if err := json.NewEncoder(out).Encode(body); err != nil {
		log.Printf("[ERROR] writing response: %s", err)
	}
}
