package player

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/internal/textutil"
	"github.com/ytget/ytinfo/types"
)

const embedConfigMarker = `t.setConfig({'PLAYER_CONFIG': `

// ParseWatchPage decodes the watch page JSON. A top level array of fragments
// is folded into one object; keys of later fragments override earlier ones.
func ParseWatchPage(body string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, errs.Malformed("Error parsing info: "+err.Error(), err)
	}

	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		info := make(map[string]any)
		for _, frag := range t {
			obj, ok := frag.(map[string]any)
			if !ok {
				continue
			}
			for k, val := range obj {
				info[k] = val
			}
		}
		return info, nil
	default:
		return nil, errs.Malformed(fmt.Sprintf("Error parsing info: unexpected %T at top level", v), nil)
	}
}

// NextAfterWatch classifies a parsed watch page: a fatal ERROR status fails,
// a page without a player object needs the embed page.
func NextAfterWatch(info map[string]any) (State, error) {
	if err := PlayError(info, StatusError); err != nil {
		return StateFailed, err
	}
	if !truthy(info["player"]) {
		return StateNeedsEmbed, nil
	}
	return StatePlayable, nil
}

// ParseEmbedPage extracts the player config literal from the embed page.
func ParseEmbedPage(body string) (map[string]any, error) {
	jsonStr := textutil.Between(body, embedConfigMarker, "</script>")
	if jsonStr == "" {
		return nil, errs.Malformed("Could not find player config", nil)
	}
	cut, err := textutil.CutAfterJSON(jsonStr)
	if err != nil {
		return nil, errs.Malformed("Error parsing config: "+err.Error(), err)
	}
	var config map[string]any
	if err := json.Unmarshal([]byte(cut), &config); err != nil {
		return nil, errs.Malformed("Error parsing config: "+err.Error(), err)
	}
	return config, nil
}

// CheckEmbedLogin raises the watch page's LOGIN_REQUIRED error unless the
// embed config carries its own player response.
func CheckEmbedLogin(info, embed map[string]any) error {
	args, _ := embed["args"].(map[string]any)
	if truthy(args["player_response"]) || truthy(args["embedded_player_response"]) {
		return nil
	}
	return PlayError(info, StatusLoginRequired)
}

// ParseLegacyInfo decodes the URL-encoded legacy info body. Malformed pairs
// are skipped the way a lenient query string parser would.
func ParseLegacyInfo(body string) url.Values {
	values, _ := url.ParseQuery(strings.TrimSpace(body))
	if values == nil {
		values = url.Values{}
	}
	return values
}

// ResolvePlayerResponse picks the canonical player_response: the watch
// player's args first, then the legacy endpoint, then the watch page's
// playerResponse. A legacy failure status is raised before anything else.
func ResolvePlayerResponse(info map[string]any, legacy url.Values) (*Response, json.RawMessage, error) {
	var candidate any
	if args, ok := lookup(info, "player", "args").(map[string]any); ok && truthy(args["player_response"]) {
		candidate = args["player_response"]
	} else if s := legacy.Get("player_response"); s != "" {
		candidate = s
	} else {
		candidate = info["playerResponse"]
	}

	if legacy.Get("status") == "fail" {
		msg := fmt.Sprintf("Code %s: %s", legacy.Get("errorcode"), textutil.StripHTML(legacy.Get("reason")))
		return nil, nil, errs.Unavailable("fail", msg)
	}

	var raw []byte
	switch v := candidate.(type) {
	case string:
		raw = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, nil, errs.Malformed("Error parsing `player_response`: "+err.Error(), err)
		}
		raw = b
	default:
		return nil, nil, errs.Malformed("Error parsing `player_response`: no player response found", nil)
	}

	var pr Response
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, nil, errs.Malformed("Error parsing `player_response`: "+err.Error(), err)
	}
	return &pr, json.RawMessage(raw), nil
}

// Project builds the basic VideoInfo from a resolved config. Missing
// videoDetails or microformat renderer paths are malformed responses.
func Project(cfg *Config) (*types.VideoInfo, error) {
	pr := cfg.PlayerResponse
	if pr == nil || pr.VideoDetails == nil {
		return nil, errs.Malformed("player_response is missing videoDetails", nil)
	}
	if pr.Microformat == nil || pr.Microformat.Renderer == nil {
		return nil, errs.Malformed("player_response is missing microformat.playerMicroformatRenderer", nil)
	}
	vd := pr.VideoDetails
	if vd.VideoID == "" {
		return nil, errs.Malformed("player_response is missing videoDetails.videoId", nil)
	}

	formats := pr.AllFormats()
	if formats == nil {
		formats = []types.Format{}
	}

	return &types.VideoInfo{
		VideoID:  vd.VideoID,
		VideoURL: WatchBaseURL + vd.VideoID,
		Title:    vd.Title,
		Author: types.Author{
			ID:         vd.ChannelID,
			Name:       vd.Author,
			ChannelURL: ChannelBaseURL + vd.ChannelID,
		},
		Published:     parsePublishDate(pr.Microformat.Renderer.PublishDate),
		Description:   vd.ShortDescription,
		LengthSeconds: int(vd.LengthSeconds),
		AgeRestricted: cfg.AgeRestricted,
		HTML5Player:   cfg.HTML5Player,
		Formats:       formats,
		Full:          false,
		PlayerResp:    cfg.RawPlayerResponse,
	}, nil
}

// parsePublishDate returns milliseconds since the epoch, or 0 if unparsable.
func parsePublishDate(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// signatureTimestamp reads sts from the watch page, then the player config.
func signatureTimestamp(info, player map[string]any) string {
	for _, src := range []map[string]any{info, player} {
		switch v := src["sts"].(type) {
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case string:
			if v != "" {
				return v
			}
		}
	}
	return ""
}

func lookup(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[p]
	}
	return cur
}

// truthy mirrors loose JSON truthiness: null, false, "", 0 are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
