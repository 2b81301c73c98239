// Package config loads the runtime configuration from the environment.
package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/kelseyhightower/envconfig"

	"github.com/mlafeldt/xkcd-vk/vk"
	"github.com/mlafeldt/xkcd-vk/xkcd"
)

// Config is built once at start and passed to the pipeline.
type Config struct {
	AccessToken          string        `envconfig:"VK_TOKEN"`
	AccessTokenParameter string        `envconfig:"VK_TOKEN_PARAMETER"`
	GroupID              int           `envconfig:"VK_GROUP_ID" required:"true"`
	FromGroup            bool          `envconfig:"VK_FROM_GROUP" default:"true"`
	APIVersion           string        `envconfig:"VK_API_VERSION" default:"5.131"`
	APIURL               string        `envconfig:"VK_API_URL" default:"https://api.vk.com/method/"`
	ComicURL             string        `envconfig:"XKCD_URL" default:"https://xkcd.com"`
	ImagesDir            string        `envconfig:"IMAGES_DIR" default:"images"`
	HTTPTimeout          time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	HeartbeatEndpoint    string        `envconfig:"HEARTBEAT_ENDPOINT"`
}

// SecretResolver looks up a secret value by name.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// Load reads the environment. If VK_TOKEN is unset, the token is fetched
// through r using VK_TOKEN_PARAMETER.
func Load(ctx context.Context, r SecretResolver) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.AccessToken == "" {
		if cfg.AccessTokenParameter == "" {
			return nil, fmt.Errorf("either VK_TOKEN or VK_TOKEN_PARAMETER is required")
		}
		if r == nil {
			return nil, fmt.Errorf("no resolver for VK_TOKEN_PARAMETER %q", cfg.AccessTokenParameter)
		}
		token, err := r.Resolve(ctx, cfg.AccessTokenParameter)
		if err != nil {
			return nil, fmt.Errorf("resolve VK token: %w", err)
		}
		cfg.AccessToken = token
	}

	if cfg.GroupID == 0 {
		return nil, fmt.Errorf("VK_GROUP_ID must not be zero")
	}
	// Community walls are addressed by negative owner ids.
	if cfg.GroupID > 0 {
		cfg.GroupID = -cfg.GroupID
	}

	return &cfg, nil
}

// Credentials returns the VK API credentials.
func (c *Config) Credentials() vk.Credentials {
	return vk.Credentials{AccessToken: c.AccessToken, Version: c.APIVersion}
}

// Destination returns the wall posts go to.
func (c *Config) Destination() vk.Destination {
	return vk.Destination{GroupID: c.GroupID, FromGroup: c.FromGroup}
}

// ComicClient returns an xkcd client for ComicURL.
func (c *Config) ComicClient() *xkcd.Client {
	return xkcd.NewClient(c.ComicURL, c.HTTPTimeout)
}

// VKClient returns a VK API client for APIURL.
func (c *Config) VKClient() *vk.Client {
	return vk.NewClient(c.APIURL, c.Credentials(), c.HTTPTimeout)
}

// String hides the access token.
func (c Config) String() string {
	token := ""
	if c.AccessToken != "" {
		token = "***"
	}
	return fmt.Sprintf("{AccessToken:%s AccessTokenParameter:%s GroupID:%d FromGroup:%t APIVersion:%s APIURL:%s ComicURL:%s ImagesDir:%s HTTPTimeout:%s HeartbeatEndpoint:%s}",
		token, c.AccessTokenParameter, c.GroupID, c.FromGroup, c.APIVersion, c.APIURL, c.ComicURL, c.ImagesDir, c.HTTPTimeout, c.HeartbeatEndpoint)
}

// SSMResolver reads secrets from AWS Systems Manager Parameter Store.
type SSMResolver struct {
	Client ssmiface.SSMAPI

	once sync.Once
	err  error
}

// NewSSMResolver returns a resolver that creates its AWS session on first use.
func NewSSMResolver() *SSMResolver {
	return &SSMResolver{}
}

// Resolve returns the decrypted value of the named parameter.
func (r *SSMResolver) Resolve(ctx context.Context, name string) (string, error) {
	r.once.Do(func() {
		if r.Client != nil {
			return
		}
		sess, err := session.NewSession()
		if err != nil {
			r.err = err
			return
		}
		r.Client = ssm.New(sess)
	})
	if r.err != nil {
		return "", r.err
	}

	out, err := r.Client.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out.Parameter == nil || aws.StringValue(out.Parameter.Value) == "" {
		return "", fmt.Errorf("parameter %q is empty", name)
	}
	return aws.StringValue(out.Parameter.Value), nil
}
