package player

import (
	"github.com/ytget/ytinfo/types"
)

// Response is the subset of the upstream player_response object that the
// resolver projects from. Pointer fields are nil when the path is absent.
type Response struct {
	PlayabilityStatus *PlayabilityStatus `json:"playabilityStatus"`
	VideoDetails      *VideoDetails      `json:"videoDetails"`
	Microformat       *Microformat       `json:"microformat"`
	StreamingData     *StreamingData     `json:"streamingData"`
}

// PlayabilityStatus is the upstream verdict on whether the video can play.
type PlayabilityStatus struct {
	Status   string   `json:"status"`
	Reason   string   `json:"reason"`
	Messages []string `json:"messages"`
}

// VideoDetails carries the core video metadata.
type VideoDetails struct {
	VideoID          string       `json:"videoId"`
	Title            string       `json:"title"`
	LengthSeconds    types.Number `json:"lengthSeconds"`
	ChannelID        string       `json:"channelId"`
	Author           string       `json:"author"`
	ShortDescription string       `json:"shortDescription"`
	IsLiveContent    bool         `json:"isLiveContent"`
}

// Microformat wraps the renderer holding publish metadata.
type Microformat struct {
	Renderer *MicroformatRenderer `json:"playerMicroformatRenderer"`
}

// MicroformatRenderer holds publish and ownership metadata.
type MicroformatRenderer struct {
	PublishDate       string `json:"publishDate"`
	UploadDate        string `json:"uploadDate"`
	OwnerChannelName  string `json:"ownerChannelName"`
	ExternalChannelID string `json:"externalChannelId"`
	Category          string `json:"category"`
	IsUnlisted        bool   `json:"isUnlisted"`
}

// StreamingData lists inline formats and manifest locations.
type StreamingData struct {
	Formats         []types.Format `json:"formats"`
	AdaptiveFormats []types.Format `json:"adaptiveFormats"`
	DashManifestURL string         `json:"dashManifestUrl"`
	HLSManifestURL  string         `json:"hlsManifestUrl"`
}

// AllFormats returns progressive formats followed by adaptive ones.
func (r *Response) AllFormats() []types.Format {
	if r == nil || r.StreamingData == nil {
		return nil
	}
	out := make([]types.Format, 0, len(r.StreamingData.Formats)+len(r.StreamingData.AdaptiveFormats))
	out = append(out, r.StreamingData.Formats...)
	out = append(out, r.StreamingData.AdaptiveFormats...)
	return out
}

// DashManifestURL returns the DASH manifest location, if any.
func (r *Response) DashManifestURL() string {
	if r == nil || r.StreamingData == nil {
		return ""
	}
	return r.StreamingData.DashManifestURL
}

// HLSManifestURL returns the HLS manifest location, if any.
func (r *Response) HLSManifestURL() string {
	if r == nil || r.StreamingData == nil {
		return ""
	}
	return r.StreamingData.HLSManifestURL
}
