package formats

import (
	"regexp"
	"strings"

	"github.com/ytget/ytinfo/internal/textutil"
	"github.com/ytget/ytinfo/types"
)

var (
	liveRe    = regexp.MustCompile(`/source/yt_live_broadcast/`)
	hlsRe     = regexp.MustCompile(`/manifest/hls_(variant|playlist)/`)
	dashMPDRe = regexp.MustCompile(`/manifest/dash/`)
)

// Enrich overlays f on the reference metadata of its itag and derives the
// container, codecs and stream-type flags. Fields set on f win.
func Enrich(f types.Format) types.Format {
	out := f
	if ref, ok := itagTable[f.Itag]; ok {
		if out.MimeType == "" {
			out.MimeType = ref.MimeType
		}
		if out.QualityLabel == "" {
			out.QualityLabel = ref.QualityLabel
		}
		if out.Bitrate == 0 {
			out.Bitrate = types.Number(ref.Bitrate)
		}
		if out.AudioBitrate == nil && ref.AudioBitrate > 0 {
			out.AudioBitrate = types.Ptr(ref.AudioBitrate)
		}
	}

	out.Container, out.Codecs = nil, nil
	if out.MimeType != "" {
		if c, ok := container(out.MimeType); ok {
			out.Container = types.Ptr(c)
		}
		out.Codecs = types.Ptr(textutil.Between(out.MimeType, `codecs="`, `"`))
	}

	out.Live = types.Ptr(liveRe.MatchString(out.URL))
	out.IsHLS = types.Ptr(hlsRe.MatchString(out.URL))
	out.IsDashMPD = types.Ptr(dashMPDRe.MatchString(out.URL))
	return out
}

// EnrichAll enriches every format in place.
func EnrichAll(list []types.Format) []types.Format {
	for i := range list {
		list[i] = Enrich(list[i])
	}
	return list
}

// container returns the MIME subtype without lower-casing it.
func container(mime string) (string, bool) {
	typ, _, _ := strings.Cut(mime, ";")
	_, sub, ok := strings.Cut(typ, "/")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(sub), true
}
