package formats

// itagInfo is the reference metadata of a well-known itag.
type itagInfo struct {
	MimeType     string
	QualityLabel string
	Bitrate      int
	AudioBitrate int // 0 means no audio
}

// itagTable is read-only after init.
var itagTable = map[int]itagInfo{
	5:  {`video/flv; codecs="Sorenson H.283, mp3"`, "240p", 250000, 64},
	6:  {`video/flv; codecs="Sorenson H.263, mp3"`, "270p", 800000, 64},
	13: {`video/3gp; codecs="MPEG-4 Visual, aac"`, "", 500000, 0},
	17: {`video/3gp; codecs="MPEG-4 Visual, aac"`, "144p", 50000, 24},
	18: {`video/mp4; codecs="H.264, aac"`, "360p", 500000, 96},
	22: {`video/mp4; codecs="H.264, aac"`, "720p", 2000000, 192},
	34: {`video/flv; codecs="H.264, aac"`, "360p", 500000, 128},
	35: {`video/flv; codecs="H.264, aac"`, "480p", 800000, 128},
	36: {`video/3gp; codecs="MPEG-4 Visual, aac"`, "240p", 175000, 32},
	37: {`video/mp4; codecs="H.264, aac"`, "1080p", 3000000, 192},
	38: {`video/mp4; codecs="H.264, aac"`, "3072p", 3500000, 192},
	43: {`video/webm; codecs="VP8, vorbis"`, "360p", 500000, 128},
	44: {`video/webm; codecs="VP8, vorbis"`, "480p", 1000000, 128},
	45: {`video/webm; codecs="VP8, vorbis"`, "720p", 2000000, 192},
	46: {`video/webm; codecs="vp8, vorbis"`, "1080p", 0, 192},
	82: {`video/mp4; codecs="H.264, aac"`, "360p", 500000, 96},
	83: {`video/mp4; codecs="H.264, aac"`, "240p", 500000, 96},
	84: {`video/mp4; codecs="H.264, aac"`, "720p", 2000000, 192},
	85: {`video/mp4; codecs="H.264, aac"`, "1080p", 3000000, 192},
	91: {`video/ts; codecs="H.264, aac"`, "144p", 100000, 48},
	92: {`video/ts; codecs="H.264, aac"`, "240p", 150000, 48},
	93: {`video/ts; codecs="H.264, aac"`, "360p", 500000, 128},
	94: {`video/ts; codecs="H.264, aac"`, "480p", 800000, 128},
	95: {`video/ts; codecs="H.264, aac"`, "720p", 1500000, 256},
	96: {`video/ts; codecs="H.264, aac"`, "1080p", 2500000, 256},

	100: {`video/webm; codecs="VP8, vorbis"`, "360p", 0, 128},
	101: {`video/webm; codecs="VP8, vorbis"`, "360p", 0, 192},
	102: {`video/webm; codecs="VP8, vorbis"`, "720p", 0, 192},
	120: {`video/flv; codecs="H.264, aac"`, "720p", 2000000, 128},
	127: {`audio/ts; codecs="aac"`, "", 0, 96},
	128: {`audio/ts; codecs="aac"`, "", 0, 96},
	132: {`video/ts; codecs="H.264, aac"`, "240p", 150000, 48},
	133: {`video/mp4; codecs="H.264"`, "240p", 200000, 0},
	134: {`video/mp4; codecs="H.264"`, "360p", 300000, 0},
	135: {`video/mp4; codecs="H.264"`, "480p", 500000, 0},
	136: {`video/mp4; codecs="H.264"`, "720p", 1000000, 0},
	137: {`video/mp4; codecs="H.264"`, "1080p", 2500000, 0},
	138: {`video/mp4; codecs="H.264"`, "4320p", 13500000, 0},
	139: {`audio/mp4; codecs="aac"`, "", 0, 48},
	140: {`audio/m4a; codecs="aac"`, "", 0, 128},
	141: {`audio/mp4; codecs="aac"`, "", 0, 256},
	151: {`video/ts; codecs="H.264, aac"`, "720p", 50000, 24},
	160: {`video/mp4; codecs="H.264"`, "144p", 100000, 0},
	171: {`audio/webm; codecs="vorbis"`, "", 0, 128},
	172: {`audio/webm; codecs="vorbis"`, "", 0, 192},

	242: {`video/webm; codecs="VP9"`, "240p", 100000, 0},
	243: {`video/webm; codecs="VP9"`, "360p", 250000, 0},
	244: {`video/webm; codecs="VP9"`, "480p", 500000, 0},
	247: {`video/webm; codecs="VP9"`, "720p", 700000, 0},
	248: {`video/webm; codecs="VP9"`, "1080p", 1500000, 0},
	249: {`audio/webm; codecs="opus"`, "", 0, 48},
	250: {`audio/webm; codecs="opus"`, "", 0, 64},
	251: {`audio/webm; codecs="opus"`, "", 0, 160},
	264: {`video/mp4; codecs="H.264"`, "1440p", 4000000, 0},
	266: {`video/mp4; codecs="H.264"`, "2160p", 12500000, 0},
	271: {`video/webm; codecs="VP9"`, "1440p", 9000000, 0},
	272: {`video/webm; codecs="VP9"`, "4320p", 20000000, 0},
	278: {`video/webm; codecs="VP9"`, "144p", 80000, 0},
	298: {`video/mp4; codecs="H.264"`, "720p", 3000000, 0},
	299: {`video/mp4; codecs="H.264"`, "1080p", 5500000, 0},
	300: {`video/ts; codecs="H.264, aac"`, "720p", 1318000, 48},
	302: {`video/webm; codecs="VP9"`, "720p HFR", 2500000, 0},
	303: {`video/webm; codecs="VP9"`, "1080p HFR", 5000000, 0},
	308: {`video/webm; codecs="VP9"`, "1440p HFR", 10000000, 0},
	313: {`video/webm; codecs="VP9"`, "2160p", 13000000, 0},
	315: {`video/webm; codecs="VP9"`, "2160p HFR", 20000000, 0},
	330: {`video/webm; codecs="VP9"`, "144p HDR, HFR", 80000, 0},
	331: {`video/webm; codecs="VP9"`, "240p HDR, HFR", 100000, 0},
	332: {`video/webm; codecs="VP9"`, "360p HDR, HFR", 250000, 0},
	333: {`video/webm; codecs="VP9"`, "480p HDR, HFR", 500000, 0},
	334: {`video/webm; codecs="VP9"`, "720p HDR, HFR", 1000000, 0},
	335: {`video/webm; codecs="VP9"`, "1080p HDR, HFR", 1500000, 0},
	336: {`video/webm; codecs="VP9"`, "1440p HDR, HFR", 5000000, 0},
	337: {`video/webm; codecs="VP9"`, "2160p HDR, HFR", 12000000, 0},
}
