// Package media builds and runs the ffmpeg commands behind a bitrate sweep.
//
// Commands are assembled with ffmpeg-go so that their argument lists can be
// inspected without an ffmpeg binary; a Runner executes them. Probe wraps
// ffprobe for stream and duration information.
package media
