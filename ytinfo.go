package ytinfo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytinfo/client"
	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/types"
	"github.com/ytget/ytinfo/youtube/cipher"
	"github.com/ytget/ytinfo/youtube/formats"
	"github.com/ytget/ytinfo/youtube/player"
	"github.com/ytget/ytinfo/youtube/videoid"
)

// VideoInfo is the resolved metadata of one video.
type VideoInfo = types.VideoInfo

// Format describes one stream variant.
type Format = types.Format

// Options contains the configuration of a Resolver.
//
// Use chainable setters on Resolver to populate these options.
type Options struct {
	HTTPClient  *http.Client
	Language    string
	MaxAttempts int
	UserAgent   string
	Fetcher     client.Fetcher
	Decipherer  cipher.Decipherer
}

// Resolver provides a high-level API for resolving video metadata and
// stream formats.
type Resolver struct {
	options Options
}

// New creates a new Resolver instance with default options.
func New() *Resolver {
	return &Resolver{}
}

// WithHTTPClient sets a custom HTTP client to be used for all network calls.
func (r *Resolver) WithHTTPClient(c *http.Client) *Resolver {
	r.options.HTTPClient = c
	return r
}

// WithLanguage sets the hl parameter sent upstream. Default "en".
func (r *Resolver) WithLanguage(lang string) *Resolver {
	r.options.Language = strings.TrimSpace(lang)
	return r
}

// WithRetries sets the total number of attempts per fetch. Values below one
// keep the default of two.
func (r *Resolver) WithRetries(attempts int) *Resolver {
	r.options.MaxAttempts = attempts
	return r
}

// WithUserAgent overrides the User-Agent header.
func (r *Resolver) WithUserAgent(ua string) *Resolver {
	r.options.UserAgent = strings.TrimSpace(ua)
	return r
}

// WithFetcher replaces the HTTP client entirely. HTTPClient, MaxAttempts and
// UserAgent are ignored when a fetcher is set.
func (r *Resolver) WithFetcher(f client.Fetcher) *Resolver {
	r.options.Fetcher = f
	return r
}

// WithDecipherer sets the signature decipherer used by ResolveFull. By
// default a cipher.JSDecipherer over the resolver's fetcher is created per
// call.
func (r *Resolver) WithDecipherer(d cipher.Decipherer) *Resolver {
	r.options.Decipherer = d
	return r
}

// ValidateID reports whether id has the shape of a video identifier.
func ValidateID(id string) bool {
	return videoid.Validate(id)
}

func (r *Resolver) fetcher() client.Fetcher {
	if r.options.Fetcher != nil {
		return r.options.Fetcher
	}
	c := client.New()
	if r.options.HTTPClient != nil {
		c.HTTPClient = r.options.HTTPClient
	}
	if r.options.MaxAttempts > 0 {
		c.MaxAttempts = r.options.MaxAttempts
	}
	if r.options.UserAgent != "" {
		c.UserAgent = r.options.UserAgent
	}
	return c
}

func (r *Resolver) resolve(ctx context.Context, id string) (*player.Config, client.Fetcher, error) {
	if !videoid.Validate(id) {
		return nil, nil, fmt.Errorf("%w: %q", errs.ErrInvalidID, id)
	}
	f := r.fetcher()
	pr := player.NewResolver(f)
	if r.options.Language != "" {
		pr.Language = r.options.Language
	}
	cfg, err := pr.Resolve(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return cfg, f, nil
}

// ResolveBasic returns the video metadata with the formats listed in the
// player response, unsorted and without deciphering. Full is false.
func (r *Resolver) ResolveBasic(ctx context.Context, id string) (*VideoInfo, error) {
	cfg, _, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return cfg.Info, nil
}

// ResolveFull additionally deciphers the formats and pulls the DASH and HLS
// manifests, concurrently. A failure in any of them fails the call. The
// merged formats are enriched and ranked best first; Full is true.
func (r *Resolver) ResolveFull(ctx context.Context, id string) (*VideoInfo, error) {
	log := logger.WithComponent(logger.ComponentApp)

	cfg, f, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	info := cfg.Info

	dec := r.options.Decipherer
	if dec == nil {
		dec = cipher.New(f)
	}

	var deciphered, dash, hls map[int]types.Format
	g, gctx := errgroup.WithContext(ctx)
	if len(info.Formats) > 0 {
		playerURL := resolvePlayerURL(cfg.HTML5Player)
		g.Go(func() error {
			m, err := dec.Decipher(gctx, info.Formats, playerURL)
			if err != nil {
				return err
			}
			deciphered = m
			return nil
		})
	}
	if u := cfg.PlayerResponse.DashManifestURL(); u != "" {
		g.Go(func() error {
			m, err := formats.FetchDASH(gctx, f, u)
			if err != nil {
				return err
			}
			dash = m
			return nil
		})
	}
	if u := cfg.PlayerResponse.HLSManifestURL(); u != "" {
		g.Go(func() error {
			m, err := formats.FetchHLS(gctx, f, u)
			if err != nil {
				return err
			}
			hls = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug("Full resolution failed", map[string]interface{}{
			"video_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	list := formats.EnrichAll(formats.Ordered(formats.Merge(deciphered, dash, hls)))
	formats.Sort(list)
	info.Formats = list
	info.Full = true

	log.Debug("Resolved full info", map[string]interface{}{
		"video_id": id,
		"formats":  len(list),
	})
	return info, nil
}

// resolvePlayerURL makes the player script reference absolute.
func resolvePlayerURL(ref string) string {
	if ref == "" {
		return ""
	}
	base, _ := url.Parse(player.WatchBaseURL)
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
