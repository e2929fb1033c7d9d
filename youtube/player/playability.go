package player

import (
	"encoding/json"

	"github.com/ytget/ytinfo/errs"
)

const (
	StatusError         = "ERROR"
	StatusLoginRequired = "LOGIN_REQUIRED"
)

// PlayError returns an unavailable error when the watch page's playerResponse
// declares the given playability status, and nil otherwise. The message is
// the upstream reason, falling back to the first message.
func PlayError(info map[string]any, status string) error {
	ps := watchPlayability(info)
	if ps == nil || ps.Status != status {
		return nil
	}
	reason := ps.Reason
	if reason == "" && len(ps.Messages) > 0 {
		reason = ps.Messages[0]
	}
	if reason == "" {
		reason = status
	}
	return errs.Unavailable(status, reason)
}

func watchPlayability(info map[string]any) *PlayabilityStatus {
	raw, ok := info["playerResponse"]
	if !ok || raw == nil {
		return nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		data = b
	}

	var pr struct {
		PlayabilityStatus *PlayabilityStatus `json:"playabilityStatus"`
	}
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil
	}
	return pr.PlayabilityStatus
}
