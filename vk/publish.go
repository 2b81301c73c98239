package vk

import (
	"context"
	"fmt"
	"log"
)

// PublishError tells which of the two publish calls failed.
type PublishError struct {
	Method string // "photos.saveWallPhoto" or "wall.post"
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// WallAPI is the part of the VK API the publisher needs. *Client implements it.
type WallAPI interface {
	SaveWallPhoto(ctx context.Context, asset *UploadedAsset, caption string) (*SavedPhoto, error)
	WallPost(ctx context.Context, p WallPostParams) (int, error)
}

// Publisher turns an uploaded asset into a wall post.
type Publisher struct {
	API WallAPI
}

// NewPublisher returns a publisher using api.
func NewPublisher(api WallAPI) *Publisher {
	return &Publisher{API: api}
}

// AttachAndPublish saves asset as a wall photo with caption and posts it to
// dest with title as the message. wall.post is not called if saving fails.
// A photo saved before a failed wall.post is left on the server.
func (p *Publisher) AttachAndPublish(ctx context.Context, asset *UploadedAsset, caption, title string, dest Destination) (*PublishedPost, error) {
	if asset == nil {
		return nil, fmt.Errorf("no uploaded asset to publish")
	}

	photo, err := p.API.SaveWallPhoto(ctx, asset, caption)
	if err != nil {
		return nil, &PublishError{Method: "photos.saveWallPhoto", Err: err}
	}

	attachment := AttachmentToken(photo.OwnerID, photo.MediaID)
	log.Printf("[DEBUG] saved wall photo %s", attachment)

	postID, err := p.API.WallPost(ctx, WallPostParams{
		OwnerID:     dest.GroupID,
		FromGroup:   dest.FromGroup,
		Attachments: attachment,
		Message:     title,
	})
	if err != nil {
		return nil, &PublishError{Method: "wall.post", Err: err}
	}

	return &PublishedPost{
		OwnerID: photo.OwnerID,
		MediaID: photo.MediaID,
		PostID:  postID,
	}, nil
}
