package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number is an integer that tolerates upstream values encoded either as JSON
// numbers or as numeric strings. Anything unparsable decodes to zero.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Number(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = Number(int64(f))
		return nil
	}
	*n = 0
	return nil
}

// Format describes one playable stream variant.
//
// The first block of fields mirrors what the upstream reports; the second
// block is derived during enrichment and is only populated on the full path.
type Format struct {
	Itag            int     `json:"itag"`
	URL             string  `json:"url,omitempty"`
	MimeType        string  `json:"mimeType,omitempty"`
	Bitrate         Number  `json:"bitrate,omitempty"`
	AudioBitrate    *int    `json:"audioBitrate"`
	QualityLabel    string  `json:"qualityLabel,omitempty"`
	Quality         string  `json:"quality,omitempty"`
	Width           Number  `json:"width,omitempty"`
	Height          Number  `json:"height,omitempty"`
	FPS             Number  `json:"fps,omitempty"`
	ContentLength   string  `json:"contentLength,omitempty"`
	AudioQuality    string  `json:"audioQuality,omitempty"`
	AudioSampleRate string  `json:"audioSampleRate,omitempty"`
	SignatureCipher string  `json:"signatureCipher,omitempty"`
	Cipher          string  `json:"cipher,omitempty"`
	Container       *string `json:"container,omitempty"`
	Codecs          *string `json:"codecs,omitempty"`

	Live      *bool `json:"live,omitempty"`
	IsHLS     *bool `json:"isHLS,omitempty"`
	IsDashMPD *bool `json:"isDashMPD,omitempty"`
}

// Author identifies the uploader of a video.
type Author struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ChannelURL string `json:"channel_url"`
}

// VideoInfo is the resolved metadata for a single video.
type VideoInfo struct {
	VideoID       string          `json:"video_id"`
	VideoURL      string          `json:"video_url"`
	Title         string          `json:"title"`
	Author        Author          `json:"author"`
	Published     int64           `json:"published"`
	Description   string          `json:"description"`
	LengthSeconds int             `json:"length_seconds"`
	AgeRestricted bool            `json:"age_restricted"`
	HTML5Player   string          `json:"html5player,omitempty"`
	Formats       []Format        `json:"formats"`
	Full          bool            `json:"full"`
	PlayerResp    json.RawMessage `json:"player_response,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
