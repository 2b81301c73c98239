// Package feed renders recent comics as an RSS feed and uploads it to S3.
package feed

import (
	"fmt"
	"html"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/gorilla/feeds"

	"github.com/mlafeldt/xkcd-vk/xkcd"
)

// Generate writes an RSS feed with one item per comic.
func Generate(w io.Writer, comics []*xkcd.Comic, now time.Time) error {
	feed := &feeds.Feed{
		Title:       "xkcd",
		Link:        &feeds.Link{Href: xkcd.DefaultBaseURL},
		Description: "xkcd: A webcomic of romance, sarcasm, math, and language",
		Created:     now,
	}

	for _, c := range comics {
		created := c.Published()
		if created.IsZero() {
			created = now
		}
		feed.Add(&feeds.Item{
			Title: fmt.Sprintf("xkcd %d: %s", c.ID, c.Title),
			Link:  &feeds.Link{Href: c.URL()},
			Description: fmt.Sprintf(`<img src="%s" title="%s" alt="%s">`,
				html.EscapeString(c.ImageURL), html.EscapeString(c.Caption), html.EscapeString(c.Title)),
			Id:      c.URL(),
			Created: created,
		})
	}

	return feed.WriteRss(w)
}

// Uploader stores a generated feed in S3.
type Uploader struct {
	BucketName string
	FeedPath   string
	S3Uploader s3manageriface.UploaderAPI
}

// Upload stores r at FeedPath and returns the object URL.
func (u *Uploader) Upload(r io.Reader) (string, error) {
	upload, err := u.S3Uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(u.BucketName),
		Key:         aws.String(u.FeedPath),
		Body:        r,
		ContentType: aws.String("text/xml; charset=utf-8"),
	})
	if err != nil {
		return "", err
	}

	return upload.Location, nil
}
