// Package pipeline runs one fetch-upload-publish cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mlafeldt/xkcd-vk/asset"
	"github.com/mlafeldt/xkcd-vk/vk"
	"github.com/mlafeldt/xkcd-vk/xkcd"
)

// State is a step of a run.
type State int

const (
	FetchingComic State = iota
	DownloadingImage
	NegotiatingUpload
	TransferringAsset
	SavingPhoto
	PublishingPost
	Done
	Failed
)

var stateNames = [...]string{
	"FETCHING_COMIC",
	"DOWNLOADING_IMAGE",
	"NEGOTIATING_UPLOAD",
	"TRANSFERRING_ASSET",
	"SAVING_PHOTO",
	"PUBLISHING_POST",
	"DONE",
	"FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// StageError reports the state a run failed in.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ComicSource is implemented by *xkcd.Client.
type ComicSource interface {
	PickRandomID(ctx context.Context) (int, error)
	FetchByID(ctx context.Context, id int) (*xkcd.Comic, error)
}

// AssetStore is implemented by *asset.Store.
type AssetStore interface {
	Download(ctx context.Context, imageURL, name string) (*asset.Asset, error)
}

// UploadSession is implemented by *vk.Client.
type UploadSession interface {
	NegotiateUploadTarget(ctx context.Context) (*vk.UploadTarget, error)
	TransferAsset(ctx context.Context, target *vk.UploadTarget, filename string, data []byte) (*vk.UploadedAsset, error)
}

// Publisher is implemented by *vk.Publisher.
type Publisher interface {
	AttachAndPublish(ctx context.Context, asset *vk.UploadedAsset, caption, title string, dest vk.Destination) (*vk.PublishedPost, error)
}

// Pipeline wires the collaborators of a run.
type Pipeline struct {
	Comics      ComicSource
	Assets      AssetStore
	Uploads     UploadSession
	Publisher   Publisher
	Destination vk.Destination

	state State
}

// Result describes a published comic.
type Result struct {
	Comic      *xkcd.Comic
	Post       *vk.PublishedPost
	Attachment string
}

// State returns the state reached by the last run.
func (p *Pipeline) State() State {
	return p.state
}

// Run publishes comic comicID, or a random comic if comicID is 0. Every
// failure ends the run; the downloaded image is removed on all paths.
func (p *Pipeline) Run(ctx context.Context, comicID int) (res *Result, err error) {
	p.state = FetchingComic

	if comicID == 0 {
		comicID, err = p.Comics.PickRandomID(ctx)
		if err != nil {
			return nil, p.fail(err)
		}
	}
	comic, err := p.Comics.FetchByID(ctx, comicID)
	if err != nil {
		return nil, p.fail(err)
	}
	log.Printf("[INFO] Picked comic %d %q", comic.ID, comic.Title)

	p.enter(DownloadingImage)
	img, err := p.Assets.Download(ctx, comic.ImageURL, asset.FileName(comic.ID, comic.ImageURL))
	if err != nil {
		return nil, p.fail(err)
	}
	defer func() {
		if rerr := img.Remove(); rerr != nil {
			if err == nil {
				res, err = nil, p.fail(rerr)
			}
		}
	}()
	log.Printf("[DEBUG] downloaded %s to %s", comic.ImageURL, img.Path)

	p.enter(NegotiatingUpload)
	target, err := p.Uploads.NegotiateUploadTarget(ctx)
	if err != nil {
		return nil, p.fail(err)
	}

	p.enter(TransferringAsset)
	data, err := img.Bytes()
	if err != nil {
		return nil, p.fail(err)
	}
	uploaded, err := p.Uploads.TransferAsset(ctx, target, img.Name(), data)
	if err != nil {
		return nil, p.fail(err)
	}
	if err := img.Remove(); err != nil {
		return nil, p.fail(err)
	}

	p.enter(SavingPhoto)
	post, err := p.Publisher.AttachAndPublish(ctx, uploaded, comic.Caption, comic.Title, p.Destination)
	if err != nil {
		var pe *vk.PublishError
		if errors.As(err, &pe) && pe.Method == "wall.post" {
			p.enter(PublishingPost)
		}
		return nil, p.fail(err)
	}
	p.enter(PublishingPost)

	p.enter(Done)
	attachment := vk.AttachmentToken(post.OwnerID, post.MediaID)
	log.Printf("[INFO] Published comic %d as %s to wall %d", comic.ID, attachment, p.Destination.GroupID)

	return &Result{Comic: comic, Post: post, Attachment: attachment}, nil
}

func (p *Pipeline) enter(s State) {
	log.Printf("[DEBUG] %s -> %s", p.state, s)
	p.state = s
}

func (p *Pipeline) fail(err error) error {
	failed := p.state
	if failed == Failed {
		return err
	}
	p.state = Failed
	return &StageError{State: failed, Err: err}
}
