package main

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/kelseyhightower/envconfig"

	"github.com/mlafeldt/xkcd-vk/feed"
	"github.com/mlafeldt/xkcd-vk/xkcd"
)

// Input is the input passed to the Lambda function.
type Input struct{}

// Output is the output returned by the Lambda function.
type Output struct {
	FeedURL string `json:"feed_url"`
}

func main() {
	lambda.Start(handler)
}

func handler(ctx context.Context, input Input) (*Output, error) {
	var env struct {
		BucketName  string        `envconfig:"BUCKET_NAME" required:"true"`
		FeedPath    string        `envconfig:"FEED_PATH" required:"true"`
		FeedLength  int           `envconfig:"FEED_LENGTH" default:"10"`
		ComicURL    string        `envconfig:"XKCD_URL" default:"https://xkcd.com"`
		HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	}
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] env = %+v", env)

	var (
		now = time.Now()
		buf bytes.Buffer
	)

	log.Printf("[INFO] Fetching the latest %d comics ...", env.FeedLength)
	comics, err := xkcd.NewClient(env.ComicURL, env.HTTPTimeout).FetchRecent(ctx, env.FeedLength)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Generating feed for date %s ...", now.Format(time.RFC3339))
	if err := feed.Generate(&buf, comics, now); err != nil {
		return nil, err
	}

	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Uploading feed to bucket %q with path %q ...", env.BucketName, env.FeedPath)
	u := feed.Uploader{
		BucketName: env.BucketName,
		FeedPath:   env.FeedPath,
		S3Uploader: s3manager.NewUploader(sess),
	}
	feedURL, err := u.Upload(&buf)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Upload completed: %s", feedURL)
	return &Output{feedURL}, nil
}
