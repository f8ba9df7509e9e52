package config

import (
	"os"
	"strings"
)

// Settings is the immutable configuration snapshot for one process.
// It is built once in main and handed to every component at construction
// time, so tests can supply their own independent values.
type Settings struct {
	// Generative model credentials and identifiers
	CohereAPIKey string
	OpenAIAPIKey string
	LLMModel     string
	TTSModel     string
	TTSVoice     string

	// Storage base location: a local HTTP base URL, an s3:// bucket URL,
	// or an https://...amazonaws.com/<bucket> host form.
	StorageBase string
	MediaRoot   string

	// Per-stage offline switches
	MockScript bool
	MockTTS    bool
	MockImages bool
	MockVideo  bool

	// AWS client overrides; empty values fall back to the default chain
	AWSRegion  string
	AWSProfile string

	// Kafka render-job consumer
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// YouTube service account file for the optional publish step
	YouTubeServiceAccount string
}

// Load builds Settings from the environment. Call godotenv.Load first if a
// .env file should be honored.
func Load() Settings {
	return Settings{
		CohereAPIKey: os.Getenv("COHERE_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		LLMModel:     getEnvOrDefault("MINUTEMIND_LLM_MODEL", "command-r-plus"),
		TTSModel:     getEnvOrDefault("MINUTEMIND_TTS_MODEL", "gpt-4o-mini-tts"),
		TTSVoice:     getEnvOrDefault("MINUTEMIND_TTS_VOICE", "alloy"),

		StorageBase: getEnvOrDefault("MINUTEMIND_STORAGE_BASE", "http://localhost:8080/media"),
		MediaRoot:   getEnvOrDefault("MINUTEMIND_MEDIA_ROOT", "./tmp"),

		MockScript: asBool(os.Getenv("MINUTEMIND_FAKE_LLM")),
		MockTTS:    asBool(os.Getenv("MINUTEMIND_FAKE_TTS")),
		MockImages: asBool(os.Getenv("MINUTEMIND_FAKE_IMAGES")),
		MockVideo:  asBool(os.Getenv("MINUTEMIND_FAKE_VIDEO")),

		AWSRegion:  os.Getenv("AWS_REGION"),
		AWSProfile: os.Getenv("AWS_PROFILE"),

		KafkaBrokers: splitList(getEnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnvOrDefault("KAFKA_RENDER_TOPIC", "minutemind-renders"),
		KafkaGroupID: getEnvOrDefault("KAFKA_GROUP_ID", "minutemind-render-workers"),

		YouTubeServiceAccount: os.Getenv("MINUTEMIND_YT_SERVICE_ACCOUNT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func asBool(val string) bool {
	return val == "1"
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
