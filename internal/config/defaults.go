package config

const (
	defaultInput       = "inputs/input.mp4"
	defaultOutputDir   = "outputs"
	defaultReportDir   = "."
	defaultRedisAddr   = "127.0.0.1:6379"
	defaultAPIBind     = ":8080"
	defaultRegion      = "auto"
	defaultVideoFormat = "mp4"
	defaultAudioFormat = "mp3"
)

// Default returns a configuration that reproduces the classic sweep: six
// video bitrates on inputs/input.mp4 and seven audio bitrates on its
// extracted MP3 track.
func Default() Config {
	return Config{
		Paths: Paths{
			Input:     defaultInput,
			OutputDir: defaultOutputDir,
			ReportDir: defaultReportDir,
		},
		Video: Ladder{
			Bitrates:  []int{500, 1500, 2000, 3000, 4000, 5000},
			Qualities: []float64{30, 50, 70, 85, 90, 95},
			Format:    defaultVideoFormat,
		},
		Audio: Ladder{
			Bitrates:  []int{320, 256, 192, 160, 128, 96, 64},
			Qualities: []float64{95, 95, 85, 80, 60, 30, 20},
			Format:    defaultAudioFormat,
		},
		FFmpeg: FFmpeg{
			Binary:       "ffmpeg",
			ProbeTimeout: 30,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Storage: Storage{
			Region: defaultRegion,
		},
		Queue: Queue{
			RedisAddr:   defaultRedisAddr,
			Concurrency: 1,
			MaxRetry:    0,
		},
		API: API{
			Bind:         defaultAPIBind,
			AllowOrigins: []string{"http://localhost:3000"},
			PresignTTL:   15 * 60,
		},
	}
}
