package media

import (
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Kind names the type of work a Job performs.
type Kind string

const (
	KindVideoTranscode Kind = "video_transcode"
	KindAudioExtract   Kind = "audio_extract"
	KindAudioTranscode Kind = "audio_transcode"
)

// Job is a single ffmpeg invocation.
type Job struct {
	Kind   Kind
	Input  string
	Output string
	// Bitrate is the ffmpeg bitrate argument ("500k"); empty for extraction.
	Bitrate string

	stream *ffmpeg.Stream
}

// Args returns the ffmpeg argument list, without the binary name.
func (j Job) Args() []string {
	if j.stream == nil {
		return nil
	}
	return j.stream.GetArgs()
}

var quietArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error"}

// BitrateArg formats kbps the way ffmpeg expects it ("500k").
func BitrateArg(kbps int) string {
	return strconv.Itoa(kbps) + "k"
}

// VideoTranscode re-encodes in at the given video bitrate into container format.
func VideoTranscode(in, out, bitrate, format string) Job {
	stream := ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{"b:v": bitrate, "f": format}).
		GlobalArgs(quietArgs...).
		OverWriteOutput()
	return Job{Kind: KindVideoTranscode, Input: in, Output: out, Bitrate: bitrate, stream: stream}
}

// ExtractAudio drops the video streams of in and writes its audio as MP3.
func ExtractAudio(in, out string) Job {
	stream := ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame", "f": "mp3"}).
		GlobalArgs(quietArgs...).
		OverWriteOutput()
	return Job{Kind: KindAudioExtract, Input: in, Output: out, stream: stream}
}

// AudioTranscode re-encodes an audio file at the given bitrate.
func AudioTranscode(in, out, bitrate, format string) Job {
	kwargs := ffmpeg.KwArgs{"b:a": bitrate, "f": format}
	if format == "mp3" {
		kwargs["acodec"] = "libmp3lame"
	}
	stream := ffmpeg.Input(in).
		Output(out, kwargs).
		GlobalArgs(quietArgs...).
		OverWriteOutput()
	return Job{Kind: KindAudioTranscode, Input: in, Output: out, Bitrate: bitrate, stream: stream}
}
