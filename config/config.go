package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	UploadModeAPI = "api"
	UploadModeS3  = "s3"
)

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Listing ListingConfig `yaml:"listing"`
	Cache   CacheConfig   `yaml:"cache"`
	Upload  UploadConfig  `yaml:"upload"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig 는 콘솔 HTTP 서버 설정이다.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	// MaxUploadBytes 는 이미지/비디오 multipart 요청 한 건의 최대 크기이다.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// APIConfig 는 원격 블로그 REST API 접속 정보다.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type ListingConfig struct {
	PageSize int `yaml:"page_size"`
	// FilterResultCap 는 필터 모드에서 한 번에 보여줄 최대 결과 수이다.
	// API 가 필터 결과를 페이지네이션하지 않기 때문에 콘솔 쪽에서 상한을 둔다.
	FilterResultCap int `yaml:"filter_result_cap"`
	TagBadgeLimit   int `yaml:"tag_badge_limit"`
	SidebarSize     int `yaml:"sidebar_size"`
}

type CacheConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type UploadConfig struct {
	// Mode 는 서명된 업로드 URL 을 어디서 받을지 결정한다. "api" 또는 "s3".
	Mode string `yaml:"mode"`
	// AssetBaseURL 은 상대 storage key 를 실제 URL 로 바꿀 때 사용하는 prefix 이다.
	AssetBaseURL string   `yaml:"asset_base_url"`
	Bucket       string   `yaml:"bucket"`
	S3           S3Config `yaml:"s3"`
}

type S3Config struct {
	Region    string        `yaml:"region"`
	Endpoint  string        `yaml:"endpoint"`
	KeyPrefix string        `yaml:"key_prefix"`
	Expires   time.Duration `yaml:"expires"`
	// AccessKey/SecretKey 가 비어 있으면 AWS 기본 자격 증명 체인을 사용한다.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

var config *AppConfig

func InitApp() {
	c, err := Load(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load 는 .env 와 config.yaml 을 읽어 기본값/환경변수 오버라이드를 적용한 설정을 반환한다.
// config.yaml 이 없으면 기본값과 환경변수만으로 구성한다.
func Load(configPath string) (*AppConfig, error) {
	// load environment variables
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	applyEnv(&c)
	applyDefaults(&c)

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("BLOG_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BLOG_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("CONSOLE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("UPLOAD_MODE"); v != "" {
		c.Upload.Mode = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Upload.Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.Upload.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.Upload.S3.SecretKey = v
	}
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = 12 * time.Hour
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 512 << 20
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://blog_api:8000"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Listing.PageSize <= 0 {
		c.Listing.PageSize = 20
	}
	if c.Listing.FilterResultCap <= 0 {
		c.Listing.FilterResultCap = 500
	}
	if c.Listing.TagBadgeLimit <= 0 {
		c.Listing.TagBadgeLimit = 3
	}
	if c.Listing.SidebarSize <= 0 {
		c.Listing.SidebarSize = 5
	}
	if c.Cache.FetchTimeout <= 0 {
		c.Cache.FetchTimeout = 15 * time.Second
	}
	c.Upload.Mode = strings.ToLower(c.Upload.Mode)
	if c.Upload.Mode == "" {
		c.Upload.Mode = UploadModeAPI
	}
	if c.Upload.S3.KeyPrefix == "" {
		c.Upload.S3.KeyPrefix = "videos/"
	}
	if c.Upload.S3.Expires <= 0 {
		c.Upload.S3.Expires = time.Hour
	}
}

func (c *AppConfig) validate() error {
	switch c.Upload.Mode {
	case UploadModeAPI:
	case UploadModeS3:
		if c.Upload.Bucket == "" {
			return fmt.Errorf("upload.mode=s3 requires upload.bucket")
		}
	default:
		return fmt.Errorf("unknown upload.mode %q", c.Upload.Mode)
	}
	return nil
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
