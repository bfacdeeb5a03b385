// Package youtube uploads videos as YouTube Shorts through the Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// Name is the platform identifier.
const Name = "youtube"

// DefaultCategoryID is "People & Blogs".
const DefaultCategoryID = "22"

const maxTitleLen = 100

// Credentials locate the Google credentials. With TokenFile set the
// credentials file is an OAuth client secret and the token file holds a user
// token; otherwise it is a service account key.
type Credentials struct {
	CredentialsFile string
	TokenFile       string
}

// Uploader implements ports.VideoPlatform.
type Uploader struct {
	service    *yt.Service
	categoryID string
	forcePriv  bool
	logger     ports.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithCategory sets the video category id.
func WithCategory(id string) Option {
	return func(u *Uploader) {
		u.categoryID = id
	}
}

// WithForcePrivate uploads every video as private regardless of metadata.
func WithForcePrivate(private bool) Option {
	return func(u *Uploader) {
		u.forcePriv = private
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(u *Uploader) {
		u.logger = l
	}
}

// New builds an authenticated uploader from credential files.
func New(ctx context.Context, creds Credentials, opts ...Option) (*Uploader, error) {
	data, err := os.ReadFile(creds.CredentialsFile)
	if err != nil {
		return nil, ports.NewPlatformError(Name, ports.CategoryAuth, fmt.Errorf("read credentials: %w", err))
	}

	var ts oauth2.TokenSource
	if creds.TokenFile != "" {
		cfg, err := google.ConfigFromJSON(data, yt.YoutubeUploadScope)
		if err != nil {
			return nil, ports.NewPlatformError(Name, ports.CategoryAuth, fmt.Errorf("parse client secret: %w", err))
		}
		tok, err := loadToken(creds.TokenFile)
		if err != nil {
			return nil, ports.NewPlatformError(Name, ports.CategoryAuth, err)
		}
		ts = cfg.TokenSource(ctx, tok)
	} else {
		cfg, err := google.JWTConfigFromJSON(data, yt.YoutubeUploadScope)
		if err != nil {
			return nil, ports.NewPlatformError(Name, ports.CategoryAuth, fmt.Errorf("parse service account: %w", err))
		}
		ts = cfg.TokenSource(ctx)
	}

	svc, err := yt.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, ports.NewPlatformError(Name, ports.CategoryAuth, fmt.Errorf("create service: %w", err))
	}
	return NewWithService(svc, opts...), nil
}

// NewWithService wraps an existing service client.
func NewWithService(svc *yt.Service, opts ...Option) *Uploader {
	u := &Uploader{
		service:    svc,
		categoryID: DefaultCategoryID,
		logger:     logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.WithComponent("youtube")
	return u
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

func (u *Uploader) Name() string {
	return Name
}

func (u *Uploader) MaxFileSize() int64 {
	return video.MaxFileSize
}

func (u *Uploader) SupportedFormats() []string {
	return []string{"mp4", "mov", "webm"}
}

// Upload inserts the video with snippet and status parts.
func (u *Uploader) Upload(ctx context.Context, path string, meta ports.VideoMetadata) (ports.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile, err)
	}
	if info.Size() > u.MaxFileSize() {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile,
			fmt.Errorf("%s is %d bytes, limit %d", filepath.Base(path), info.Size(), u.MaxFileSize()))
	}

	u.logger.Debug("Uploading %s (%.2f MB)", path, float64(info.Size())/(1024*1024))

	resp, err := u.service.Videos.Insert([]string{"snippet", "status"}, u.videoResource(meta)).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return ports.UploadResult{}, ports.NewPlatformError(Name, categorize(err), err)
	}

	return ports.UploadResult{
		VideoID:    resp.Id,
		Platform:   Name,
		UploadTime: time.Now(),
	}, nil
}

func (u *Uploader) videoResource(meta ports.VideoMetadata) *yt.Video {
	privacy := meta.Privacy
	if u.forcePriv {
		privacy = ports.PrivacyPrivate
	}
	return &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       shortsTitle(meta.Title),
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  u.categoryID,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           privacy.String(),
			SelfDeclaredMadeForKids: false,
		},
	}
}

// shortsTitle appends the #Shorts hashtag and keeps the title within the API limit.
func shortsTitle(title string) string {
	const tag = " #Shorts"
	if strings.Contains(strings.ToLower(title), "#shorts") {
		return truncate(title, maxTitleLen)
	}
	return truncate(title, maxTitleLen-len(tag)) + tag
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func categorize(err error) ports.ErrorCategory {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return ports.CategoryAuth
		}
		return ports.CategoryAPI
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return ports.CategoryAuth
	}
	var uerr *url.Error
	var nerr net.Error
	if errors.As(err, &uerr) || errors.As(err, &nerr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ports.CategoryNetwork
	}
	return ports.CategoryAPI
}

var _ ports.VideoPlatform = (*Uploader)(nil)
