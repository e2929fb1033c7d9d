package formats

import (
	"strconv"
	"strings"

	"github.com/ytget/ytinfo/internal/mimeext"
	"github.com/ytget/ytinfo/types"
)

// hasDirectURL returns true when the format already contains a resolvable URL.
func hasDirectURL(format types.Format) bool {
	return strings.TrimSpace(format.URL) != ""
}

// mimeSubtypeEquals checks desiredExt against the MIME subtype or the file
// extension of the format ("m4a" matches audio/mp4). The extension is
// case-insensitive and may start with a dot; empty matches all.
func mimeSubtypeEquals(format types.Format, desiredExt string) bool {
	desired := mimeext.Normalize(desiredExt)
	if desired == "" {
		return true
	}
	return getSubtype(format.MimeType) == desired || mimeext.FromMime(format.MimeType) == desired
}

func itagEquals(format types.Format, itag int) bool {
	return itag > 0 && format.Itag == itag
}

// withinHeight checks the quality label height against [minHeight, maxHeight].
// A zero bound is ignored.
func withinHeight(format types.Format, minHeight int, maxHeight int) bool {
	if minHeight <= 0 && maxHeight <= 0 {
		return true
	}
	h := parseResolution(format.QualityLabel)
	if minHeight > 0 && h < minHeight {
		return false
	}
	if maxHeight > 0 && h > maxHeight {
		return false
	}
	return true
}

// Select chooses one format.
// Supported selectors:
//   - itag=NN: specific format by itag
//   - best: first format in quality order
//   - worst: last format in quality order
//   - height<=NNN, height>=NNN: bounds on the quality label height
//
// ext filters by MIME subtype ("mp4", "webm") when any format matches.
// Without a selector, itag 22 then 18 is preferred, then an avc1 mp4, then
// any format with a direct URL. It returns nil for an empty list.
func Select(list []types.Format, quality, ext string) *types.Format {
	if len(list) == 0 {
		return nil
	}

	filtered := make([]types.Format, 0, len(list))
	for i := range list {
		if mimeSubtypeEquals(list[i], ext) {
			filtered = append(filtered, list[i])
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, list...)
	}

	q := strings.TrimSpace(strings.ToLower(quality))
	if v, ok := strings.CutPrefix(q, "itag="); ok {
		if it, err := strconv.Atoi(v); err == nil {
			for i := range filtered {
				if itagEquals(filtered[i], it) {
					return &filtered[i]
				}
			}
		}
		return nil
	}

	var minH, maxH int
	if v, ok := strings.CutPrefix(q, "height<="); ok {
		if n, err := strconv.Atoi(v); err == nil {
			maxH = n
		}
	}
	if v, ok := strings.CutPrefix(q, "height>="); ok {
		if n, err := strconv.Atoi(v); err == nil {
			minH = n
		}
	}
	if minH > 0 || maxH > 0 {
		tmp := make([]types.Format, 0, len(filtered))
		for i := range filtered {
			if withinHeight(filtered[i], minH, maxH) {
				tmp = append(tmp, filtered[i])
			}
		}
		if len(tmp) == 0 {
			return nil
		}
		Sort(tmp)
		return &tmp[0]
	}

	if q == "best" || q == "worst" {
		ranked := append([]types.Format(nil), filtered...)
		Sort(ranked)
		if q == "best" {
			return &ranked[0]
		}
		return &ranked[len(ranked)-1]
	}

	for _, want := range []int{22, 18} {
		for i := range filtered {
			if filtered[i].Itag == want {
				return &filtered[i]
			}
		}
	}
	for i := range filtered {
		if strings.Contains(filtered[i].MimeType, "video/mp4") && strings.Contains(filtered[i].MimeType, "avc1") {
			return &filtered[i]
		}
	}
	for i := range filtered {
		if hasDirectURL(filtered[i]) {
			return &filtered[i]
		}
	}
	return &filtered[0]
}
