package config

// Video encoding constants
const (
	// FrameWidth and FrameHeight define the fixed target frame size
	FrameWidth  = 1280
	FrameHeight = 720

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"

	// FrameRate is the output frame rate
	FrameRate = 24
)

// Backdrop color used behind scene images and for solid fallback frames
const (
	BackdropR = 22
	BackdropG = 28
	BackdropB = 45
)

// Mock narration audio constants
const (
	// SilenceSampleRate is the sample rate of the fallback WAV payload
	SilenceSampleRate = 22050

	// SilenceDurationSeconds is the length of the fallback WAV payload
	SilenceDurationSeconds = 1.0
)

// MetadataPrefix names the per-video metadata objects in cloud storage
const MetadataPrefix = "metadata-"

// VideoIndexFile is the single local metadata index at the media root
const VideoIndexFile = "videos.json"
