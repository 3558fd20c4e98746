package config

const (
	defaultWorkDir      = "~/.local/share/pausetrim/work"
	defaultLogDir       = "~/.local/share/pausetrim/logs"
	defaultOutputSuffix = "_edited"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultThresholdDB   = -38.0
	defaultMinSilenceSec = 1.0
	defaultHighpassHz    = 80
	defaultLowpassHz     = 12000

	defaultLongThresholdSec = 1.0
	defaultReduceRatio      = 0.6
	defaultMinFinalSec      = 0.5
	defaultMaxFinalSec      = 1.4
	defaultHeadTailRatio    = 0.5

	defaultVideoCodec   = "libx264"
	defaultPreset       = "medium"
	defaultCRF          = 18
	defaultAudioCodec   = "aac"
	defaultAudioBitrate = "192k"

	defaultNotifyRequestTimeout = 10

	// defaultAudioPreChain re-cleans the concatenated audio before
	// dynamics. The detection clean is applied to a throwaway track, so
	// the rendered audio needs its own pass.
	defaultAudioPreChain = "afftdn=nr=8:nf=-25,highpass=f=80,lowpass=f=12000"

	// defaultAudioPostChain levels the edit: adaptive normalization,
	// gentle compression, then EBU R128 loudness. dynaudnorm frame size
	// is odd to avoid filter-size warnings on some ffmpeg builds.
	defaultAudioPostChain = "dynaudnorm=f=301:g=6," +
		"acompressor=threshold=-18dB:ratio=2.5:attack=5:release=120:makeup=2.5," +
		"loudnorm=I=-16:TP=-1.5:LRA=11"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:      defaultWorkDir,
			LogDir:       defaultLogDir,
			OutputSuffix: defaultOutputSuffix,
		},
		Detection: Detection{
			ThresholdDB:   defaultThresholdDB,
			MinSilenceSec: defaultMinSilenceSec,
			Denoise:       true,
			HighpassHz:    defaultHighpassHz,
			LowpassHz:     defaultLowpassHz,
		},
		Shrink: Shrink{
			LongThresholdSec: defaultLongThresholdSec,
			ReduceRatio:      defaultReduceRatio,
			MinFinalSec:      defaultMinFinalSec,
			MaxFinalSec:      defaultMaxFinalSec,
			HeadTailRatio:    defaultHeadTailRatio,
		},
		Encode: Encode{
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			Faststart:    true,
		},
		Filters: Filters{
			AudioPreChain:  defaultAudioPreChain,
			AudioPostChain: defaultAudioPostChain,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
