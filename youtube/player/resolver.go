// Package player resolves a video id into the canonical player configuration
// by walking the watch page, embed page and legacy info endpoint.
package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ytget/ytinfo/client"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/types"
)

const (
	WatchBaseURL   = "https://www.youtube.com/watch?v="
	EmbedBaseURL   = "https://www.youtube.com/embed/"
	LegacyInfoURL  = "https://www.youtube.com/get_video_info"
	EmbedReferrer  = "https://youtube.googleapis.com/v/"
	ChannelBaseURL = "https://www.youtube.com/channel/"

	DefaultLanguage = "en"

	clientName    = "1"
	clientVersion = "2.20191008.04.01"
)

// Config is the canonical player state for one video.
type Config struct {
	VideoID           string
	PlayerResponse    *Response
	RawPlayerResponse json.RawMessage
	STS               string
	HTML5Player       string
	AgeRestricted     bool
	// Info is the basic projection, set once the config is resolved.
	Info *types.VideoInfo
}

// Resolver runs the resolution state machine over a Fetcher.
type Resolver struct {
	Fetcher  client.Fetcher
	Language string
	// Now is used for the watch page cache-busting parameter.
	Now func() time.Time
}

// NewResolver creates a resolver with the default language.
func NewResolver(f client.Fetcher) *Resolver {
	return &Resolver{Fetcher: f, Language: DefaultLanguage, Now: time.Now}
}

// Resolve walks the states from init to resolved or failed. Transport errors
// are returned as the fetcher produced them; content problems are errs.Error.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (*Config, error) {
	m := &machine{r: r, id: videoID, state: StateInit}
	return m.run(ctx)
}

type machine struct {
	r     *Resolver
	id    string
	state State

	info   map[string]any
	embed  map[string]any
	legacy url.Values
	cfg    *Config
}

func (m *machine) run(ctx context.Context) (*Config, error) {
	log := logger.WithComponent(logger.ComponentResolver)

	for !m.state.Terminal() {
		from := m.state
		next, err := m.step(ctx)
		if err != nil {
			m.state = StateFailed
			log.Debug("Resolution failed", map[string]interface{}{
				"video_id": m.id,
				"state":    from.String(),
				"error":    err.Error(),
			})
			return nil, err
		}
		m.state = next
		log.Debug("State transition", map[string]interface{}{
			"video_id": m.id,
			"from":     from.String(),
			"state":    next.String(),
		})
	}
	return m.cfg, nil
}

func (m *machine) step(ctx context.Context) (State, error) {
	switch m.state {
	case StateInit:
		return m.fetchWatch(ctx)
	case StateWatchPageFetched:
		return NextAfterWatch(m.info)
	case StateNeedsEmbed:
		return m.fetchEmbed(ctx)
	case StatePlayable, StateEmbedFetched:
		return m.fetchLegacy(ctx)
	case StateLegacyInfoFetched:
		return m.resolve()
	default:
		return StateFailed, nil
	}
}

func (m *machine) fetchWatch(ctx context.Context) (State, error) {
	h := http.Header{}
	h.Set("x-youtube-client-name", clientName)
	h.Set("x-youtube-client-version", clientVersion)

	body, err := m.r.Fetcher.GetText(ctx, m.r.watchURL(m.id), h)
	if err != nil {
		return StateFailed, err
	}
	info, err := ParseWatchPage(body)
	if err != nil {
		return StateFailed, err
	}
	m.info = info
	return StateWatchPageFetched, nil
}

func (m *machine) fetchEmbed(ctx context.Context) (State, error) {
	body, err := m.r.Fetcher.GetText(ctx, m.r.embedURL(m.id), nil)
	if err != nil {
		return StateFailed, err
	}
	embed, err := ParseEmbedPage(body)
	if err != nil {
		return StateFailed, err
	}
	if err := CheckEmbedLogin(m.info, embed); err != nil {
		return StateFailed, err
	}
	m.embed = embed
	m.info["player"] = embed
	return StateEmbedFetched, nil
}

func (m *machine) fetchLegacy(ctx context.Context) (State, error) {
	player, _ := m.info["player"].(map[string]any)
	sts := signatureTimestamp(m.info, player)

	body, err := m.r.Fetcher.GetText(ctx, m.r.legacyURL(m.id, sts), nil)
	if err != nil {
		return StateFailed, err
	}
	m.legacy = ParseLegacyInfo(body)
	return StateLegacyInfoFetched, nil
}

func (m *machine) resolve() (State, error) {
	pr, raw, err := ResolvePlayerResponse(m.info, m.legacy)
	if err != nil {
		return StateFailed, err
	}

	player, _ := m.info["player"].(map[string]any)
	cfg := &Config{
		VideoID:           m.id,
		PlayerResponse:    pr,
		RawPlayerResponse: raw,
		STS:               signatureTimestamp(m.info, player),
		AgeRestricted:     truthy(lookup(player, "args", "is_embed")),
	}
	if js, ok := lookup(player, "assets", "js").(string); ok {
		cfg.HTML5Player = js
	}

	info, err := Project(cfg)
	if err != nil {
		return StateFailed, err
	}
	cfg.Info = info
	m.cfg = cfg
	return StateResolved, nil
}

func (r *Resolver) lang() string {
	if r.Language == "" {
		return DefaultLanguage
	}
	return r.Language
}

func (r *Resolver) watchURL(id string) string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	// bpctr is the current time in seconds, rounded up.
	bpctr := (now().UnixMilli() + 999) / 1000
	return WatchBaseURL + id +
		"&hl=" + url.QueryEscape(r.lang()) +
		"&bpctr=" + strconv.FormatInt(bpctr, 10) +
		"&pbj=1"
}

func (r *Resolver) embedURL(id string) string {
	return EmbedBaseURL + id + "?hl=" + url.QueryEscape(r.lang())
}

func (r *Resolver) legacyURL(id, sts string) string {
	u := LegacyInfoURL +
		"?video_id=" + url.QueryEscape(id) +
		"&eurl=" + url.QueryEscape(EmbedReferrer+id) +
		"&ps=default&gl=US" +
		"&hl=" + url.QueryEscape(r.lang())
	if sts != "" {
		u += "&sts=" + url.QueryEscape(sts)
	}
	return u
}
