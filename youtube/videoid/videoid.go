// Package videoid validates video identifiers and extracts them from URLs.
package videoid

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/ytinfo/errs"
)

var idRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// Validate reports whether id is exactly 11 characters of [A-Za-z0-9_-].
func Validate(id string) bool {
	return idRe.MatchString(id)
}

// Extract returns the video id from a bare id or a watch, shorts, embed,
// live or youtu.be URL.
func Extract(input string) (string, error) {
	input = strings.TrimSpace(input)
	if Validate(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidID, err)
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case strings.HasPrefix(u.Path, "/watch"):
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
		case strings.HasPrefix(u.Path, "/live/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/live"))
		case strings.HasPrefix(u.Path, "/v/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/v"))
		}
	}

	if !Validate(id) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidID, input)
	}
	return id, nil
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
