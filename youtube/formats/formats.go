// Package formats aggregates, enriches, ranks and selects media formats.
package formats

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ytget/ytinfo/types"
)

var resolutionRe = regexp.MustCompile(`(\d+)p`)

// getSubtype returns the lower-cased MIME subtype, e.g. "mp4" for
// `video/mp4; codecs="avc1"`.
func getSubtype(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}

// parseResolution extracts the integer before "p" in a quality label, or 0.
func parseResolution(label string) int {
	m := resolutionRe.FindStringSubmatch(label)
	if len(m) >= 2 {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return 0
}

// Index keys formats by itag; a later format with the same itag replaces an
// earlier one.
func Index(list []types.Format) map[int]types.Format {
	return lo.SliceToMap(list, func(f types.Format) (int, types.Format) {
		return f.Itag, f
	})
}

// Merge combines per-source format maps in order. For an itag present in more
// than one map the entry from the later map is kept whole; fields are never
// combined across sources.
func Merge(sources ...map[int]types.Format) map[int]types.Format {
	if len(sources) == 0 {
		return map[int]types.Format{}
	}
	return lo.Assign(sources...)
}

// Ordered flattens a merged map into a slice by ascending itag.
func Ordered(m map[int]types.Format) []types.Format {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return lo.Map(keys, func(itag int, _ int) types.Format {
		return m[itag]
	})
}
