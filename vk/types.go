package vk

import "fmt"

// UploadTarget is a single-use endpoint for one photo transfer.
type UploadTarget struct {
	UploadURL string `json:"upload_url"`
}

// UploadedAsset is a photo staged on the upload server but not attached yet.
type UploadedAsset struct {
	Photo  string
	Server int
	Hash   string
}

// SavedPhoto identifies a wall photo created by photos.saveWallPhoto.
type SavedPhoto struct {
	OwnerID int `json:"owner_id"`
	MediaID int `json:"id"`
}

// PublishedPost is the result of a successful publish.
type PublishedPost struct {
	OwnerID int
	MediaID int
	PostID  int
}

// Destination is the wall a post goes to. GroupID is negative for community walls.
type Destination struct {
	GroupID   int
	FromGroup bool
}

// AttachmentToken formats the reference to a saved photo used by wall.post.
func AttachmentToken(ownerID, mediaID int) string {
	return fmt.Sprintf("photo%d_%d", ownerID, mediaID)
}
