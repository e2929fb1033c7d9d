package formats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ytget/ytinfo/types"
)

// Codec preference tables, lowest preference first.
var (
	audioEncodingRanks = []string{"mp4a", "mp3", "vorbis", "aac", "opus", "flac"}
	videoEncodingRanks = []string{"mp4v", "avc1", "Sorenson H.283", "MPEG-4 Visual", "VP8", "VP9", "H.264"}
)

func codecsOf(f types.Format) string {
	if f.Codecs == nil {
		return ""
	}
	return *f.Codecs
}

func encodingRank(codecs string, table []string) int {
	if codecs == "" {
		return -1
	}
	for i, enc := range table {
		if strings.Contains(codecs, enc) {
			return i
		}
	}
	return -1
}

func audioBitrate(f types.Format) int {
	if f.AudioBitrate == nil {
		return 0
	}
	return *f.AudioBitrate
}

func featureScore(f types.Format) int {
	score := 0
	if parseResolution(f.QualityLabel) > 0 {
		score += 2
	}
	if f.AudioBitrate != nil {
		score++
	}
	return score
}

func audioScore(f types.Format) float64 {
	score := float64(audioBitrate(f))
	if idx := encodingRank(codecsOf(f), audioEncodingRanks); idx >= 0 {
		score += float64(idx) / 10
	}
	return score
}

// Compare orders a before b (negative) when a is the higher quality format.
// Criteria in order: feature score, resolution, bitrate, audio score and
// video codec preference. Formats equal on all of them compare as 0.
func Compare(a, b types.Format) int {
	if c := cmp.Compare(featureScore(b), featureScore(a)); c != 0 {
		return c
	}
	if c := cmp.Compare(parseResolution(b.QualityLabel), parseResolution(a.QualityLabel)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Bitrate, a.Bitrate); c != 0 {
		return c
	}
	if c := cmp.Compare(audioScore(b), audioScore(a)); c != 0 {
		return c
	}
	return cmp.Compare(encodingRank(codecsOf(b), videoEncodingRanks), encodingRank(codecsOf(a), videoEncodingRanks))
}

// Sort orders formats from highest to lowest quality. Equal formats keep
// their relative order.
func Sort(list []types.Format) {
	slices.SortStableFunc(list, Compare)
}
