package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAACBitrate = "192k"
	DefaultMP3Bitrate = "256k"

	DefaultProbeTimeout     = 30 * time.Second
	DefaultTranscodeTimeout = 10 * time.Minute
)

// Publish holds the build policy switches read from the build config file.
type Publish struct {
	Originals      bool
	EncodeLossless bool
	AACBitrate     string // e.g., "192k"
	MP3Bitrate     string // e.g., "256k"
}

// MinioConfig is only needed by the publish command.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// Config stores the application configuration.
type Config struct {
	MusicDir    string // library root scanned for audio files
	SiteDir     string // static front-end assets
	DistDir     string // output root, wiped on every build
	BuildConfig string // path of the JSON build config file

	FFmpegPath       string
	FFprobePath      string
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	TagFallback      bool

	Workers int
	Publish Publish

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool

	ServeAddr string
	Minio     MinioConfig
}

// Options selects where Load looks. Empty fields use the defaults.
type Options struct {
	EnvFile     string // .env file; missing is not an error
	BuildConfig string // overrides BUILD_CONFIG
}

// Error is a configuration error naming the offending file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// fileConfig mirrors config.json. Both the nested publish section and the
// flat keys are accepted; the nested section wins.
type fileConfig struct {
	Publish *publishSection `json:"publish"`

	PublishOriginals *bool   `json:"publishOriginals"`
	EncodeLossless   *bool   `json:"encodeLossless"`
	AACBitrate       *string `json:"aacBitrate"`
	MP3Bitrate       *string `json:"mp3Bitrate"`
}

type publishSection struct {
	Originals      *bool   `json:"originals"`
	EncodeLossless *bool   `json:"encodeLossless"`
	AACBitrate     *string `json:"aacBitrate"`
	MP3Bitrate     *string `json:"mp3Bitrate"`
}

var bitratePattern = regexp.MustCompile(`^[1-9][0-9]*[kK]?$`)

// DefaultPublish returns the policy used when config.json is absent.
func DefaultPublish() Publish {
	return Publish{
		Originals:      true,
		EncodeLossless: true,
		AACBitrate:     DefaultAACBitrate,
		MP3Bitrate:     DefaultMP3Bitrate,
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Load reads .env (never overriding the real environment), the
// environment, and then the JSON build config file.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Path: envFile, Err: err}
	}

	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	cfg := &Config{
		MusicDir:    getEnv("MUSIC_DIR", "music"),
		SiteDir:     getEnv("SITE_DIR", "site"),
		DistDir:     getEnv("DIST_DIR", "dist"),
		BuildConfig: getEnv("BUILD_CONFIG", "config.json"),

		FFmpegPath:       ffmpegPath,
		FFprobePath:      getEnv("FFPROBE_PATH", deriveFFprobePath(ffmpegPath)),
		ProbeTimeout:     getEnvDuration("PROBE_TIMEOUT", DefaultProbeTimeout),
		TranscodeTimeout: getEnvDuration("TRANSCODE_TIMEOUT", DefaultTranscodeTimeout),
		TagFallback:      getEnvBool("TAG_FALLBACK", false),

		Workers: getEnvInt("BUILD_WORKERS", runtime.NumCPU()),
		Publish: DefaultPublish(),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),

		ServeAddr: getEnv("SERVE_ADDR", ":8080"),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "sitefm"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			Prefix:    getEnv("MINIO_PREFIX", ""),
		},
	}
	if opts.BuildConfig != "" {
		cfg.BuildConfig = opts.BuildConfig
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	publish, err := LoadPublish(cfg.BuildConfig)
	if err != nil {
		return nil, err
	}
	cfg.Publish = publish
	return cfg, nil
}

// LoadPublish parses the build config file. A missing file yields the
// defaults; unknown keys are ignored.
func LoadPublish(path string) (Publish, error) {
	p := DefaultPublish()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return Publish{}, &Error{Path: path, Err: err}
	}

	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return Publish{}, &Error{Path: path, Err: err}
	}

	apply := func(originals, encode *bool, aac, mp3 *string) {
		if originals != nil {
			p.Originals = *originals
		}
		if encode != nil {
			p.EncodeLossless = *encode
		}
		if aac != nil {
			p.AACBitrate = strings.TrimSpace(*aac)
		}
		if mp3 != nil {
			p.MP3Bitrate = strings.TrimSpace(*mp3)
		}
	}
	apply(fc.PublishOriginals, fc.EncodeLossless, fc.AACBitrate, fc.MP3Bitrate)
	if s := fc.Publish; s != nil {
		apply(s.Originals, s.EncodeLossless, s.AACBitrate, s.MP3Bitrate)
	}

	if err := p.Validate(); err != nil {
		return Publish{}, &Error{Path: path, Err: err}
	}
	return p, nil
}

// Validate checks the bitrate strings ffmpeg will receive.
func (p Publish) Validate() error {
	if !bitratePattern.MatchString(p.AACBitrate) {
		return fmt.Errorf("aacBitrate must look like \"192k\", got %q", p.AACBitrate)
	}
	if !bitratePattern.MatchString(p.MP3Bitrate) {
		return fmt.Errorf("mp3Bitrate must look like \"256k\", got %q", p.MP3Bitrate)
	}
	return nil
}

// deriveFFprobePath assumes ffprobe sits next to ffmpeg.
func deriveFFprobePath(ffmpegPath string) string {
	dir, base := filepath.Split(ffmpegPath)
	if !strings.Contains(base, "ffmpeg") {
		return "ffprobe"
	}
	return dir + strings.Replace(base, "ffmpeg", "ffprobe", 1)
}
