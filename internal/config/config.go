package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso. Se carga una sola vez
// en main y se pasa explícita a los constructores; no hay estado global
// mutable de configuración.
type Config struct {
	Port  string
	DBDSN string // si viene vacío, repos in-memory

	JWTSecret string // si viene vacío, modo dev (X-Debug-User-ID)

	TriageBaseURL string
	TriageTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string

	KakaoRESTKey string

	KafkaBrokers []string
	KafkaTopic   string

	BlobDriver string // memory|fs|s3
	BlobFSRoot string
	S3Bucket   string
	S3Region   string
	S3Endpoint string

	SyncPollInterval time.Duration // source postgres (polling)
	EnrichLimit      int           // fan-out máximo de joins por snapshot
}

// Load lee .env si existe y arma la Config desde el entorno.
func Load() Config {
	_ = godotenv.Load() // opcional; en prod las vars vienen del entorno

	return Config{
		Port:  getenv("PORT", "8080"),
		DBDSN: os.Getenv("DB_DSN"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		TriageBaseURL: os.Getenv("TRIAGE_BASE_URL"),
		TriageTimeout: getduration("TRIAGE_TIMEOUT", 60*time.Second),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),

		KakaoRESTKey: os.Getenv("KAKAO_REST_KEY"),

		KafkaBrokers: split(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "clinic-notifications"),

		BlobDriver: getenv("BLOB_DRIVER", "memory"),
		BlobFSRoot: getenv("BLOB_FS_ROOT", "./blobdata"),
		S3Bucket:   os.Getenv("BLOB_S3_BUCKET"),
		S3Region:   getenv("BLOB_S3_REGION", "us-east-1"),
		S3Endpoint: os.Getenv("BLOB_S3_ENDPOINT"),

		SyncPollInterval: getduration("SYNC_POLL_INTERVAL", 2*time.Second),
		EnrichLimit:      getint("ENRICH_LIMIT", 4),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getint(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
