package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// Network configuration
	Port string // HTTP service port

	// Directory configuration
	SessionDirectory string // Directory holding the portable session artifact
	DataDirectory    string // Parent directory of the metadata store

	// Database configuration
	Database DatabaseConfig

	// Telegram desktop client configuration
	Desktop DesktopConfig

	// Scanner configuration
	Scanner ScannerConfig

	// Uploader configuration
	Uploader UploaderConfig

	// Storage configuration
	Storage StorageConfig

	// Redis configuration
	Redis RedisConfig

	// Swagger configuration
	SwaggerBaseUrl string
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Type         string // sqlite (default) or mysql
	Path         string // SQLite database path (defaults under DataDirectory)
	Dsn          string // MySQL DSN
	MaxOpenConns int    // MySQL max open connections
	MaxIdleConns int    // MySQL max idle connections
}

// DesktopConfig desktop messaging client configuration
type DesktopConfig struct {
	TdataPath string // Explicit tdata path; empty = probe well-known locations
	Passcode  string // Local passcode, empty for the default unprotected key
}

// ScannerConfig scan engine configuration
type ScannerConfig struct {
	MaxConcurrentScans  int   // Global scan pool size
	BatchSize           int   // Messages per iteration batch
	StallTimeoutSeconds int   // Scan with no progress for this long fails as stalled
	DownloadChunkSize   int64 // Media download chunk size in bytes
	ControlTimeoutSecs  int   // Facade control RPC timeout
	DownloadTimeoutSecs int   // Facade streaming download timeout
	MaxRetries          int   // Transient error retry attempts
}

// UploaderConfig upload path configuration
type UploaderConfig struct {
	DefaultTarget string // local (default) or remote
	MaxFileSize   int64  // Max upload size in bytes
	SavedChannel  string // Channel handle used for remote uploads, empty = saved messages
}

// StorageConfig storage configuration
type StorageConfig struct {
	Type  string
	Local LocalStorageConfig
	OSS   OSSStorageConfig
	S3    S3StorageConfig
	MinIO MinIOStorageConfig
}

// LocalStorageConfig local storage configuration
type LocalStorageConfig struct {
	BasePath string
}

// OSSStorageConfig OSS storage configuration
type OSSStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
}

// S3StorageConfig AWS S3 storage configuration
type S3StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string
	Endpoint  string // Optional custom endpoint
}

// MinIOStorageConfig MinIO storage configuration
type MinIOStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Domain    string
}

// RedisConfig redis configuration
type RedisConfig struct {
	Enabled  bool   // Enable Redis cache
	Host     string // Redis host
	Port     int    // Redis port
	Password string // Redis password (optional)
	DB       int    // Redis database number
	CacheTTL int    // Cache TTL in seconds (default: 300)
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}

	// Environment variables override file values (TELEDRIVE_SESSION_DIRECTORY etc.)
	viper.SetEnvPrefix("teledrive")
	viper.AutomaticEnv()

	// Create configuration instance
	Cfg = &Config{
		Port:             viper.GetString("port"),
		SessionDirectory: viper.GetString("session_directory"),
		DataDirectory:    viper.GetString("data_directory"),
		SwaggerBaseUrl:   viper.GetString("swagger_base_url"),

		Database: DatabaseConfig{
			Type:         viper.GetString("database.type"),
			Path:         viper.GetString("database.path"),
			Dsn:          viper.GetString("database.dsn"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
		},

		Desktop: DesktopConfig{
			TdataPath: viper.GetString("desktop.tdata_path"),
			Passcode:  viper.GetString("desktop.passcode"),
		},

		Scanner: ScannerConfig{
			MaxConcurrentScans:  viper.GetInt("scanner.max_concurrent_scans"),
			BatchSize:           viper.GetInt("scanner.batch_size"),
			StallTimeoutSeconds: viper.GetInt("scanner.stall_timeout_seconds"),
			DownloadChunkSize:   viper.GetInt64("scanner.download_chunk_size"),
			ControlTimeoutSecs:  viper.GetInt("scanner.control_timeout_seconds"),
			DownloadTimeoutSecs: viper.GetInt("scanner.download_timeout_seconds"),
			MaxRetries:          viper.GetInt("scanner.max_retries"),
		},

		Uploader: UploaderConfig{
			DefaultTarget: viper.GetString("uploader.default_target"),
			MaxFileSize:   viper.GetInt64("uploader.max_file_size") * 1024 * 1024, // MB to bytes
			SavedChannel:  viper.GetString("uploader.saved_channel"),
		},

		Storage: StorageConfig{
			Type: viper.GetString("storage.type"),
			Local: LocalStorageConfig{
				BasePath: viper.GetString("storage.local.base_path"),
			},
			OSS: OSSStorageConfig{
				Endpoint:  viper.GetString("storage.oss.endpoint"),
				AccessKey: viper.GetString("storage.oss.access_key"),
				SecretKey: viper.GetString("storage.oss.secret_key"),
				Bucket:    viper.GetString("storage.oss.bucket"),
				Domain:    viper.GetString("storage.oss.domain"),
			},
			S3: S3StorageConfig{
				Region:    viper.GetString("storage.s3.region"),
				AccessKey: viper.GetString("storage.s3.access_key"),
				SecretKey: viper.GetString("storage.s3.secret_key"),
				Bucket:    viper.GetString("storage.s3.bucket"),
				Domain:    viper.GetString("storage.s3.domain"),
				Endpoint:  viper.GetString("storage.s3.endpoint"),
			},
			MinIO: MinIOStorageConfig{
				Endpoint:  viper.GetString("storage.minio.endpoint"),
				AccessKey: viper.GetString("storage.minio.access_key"),
				SecretKey: viper.GetString("storage.minio.secret_key"),
				Bucket:    viper.GetString("storage.minio.bucket"),
				UseSSL:    viper.GetBool("storage.minio.use_ssl"),
				Domain:    viper.GetString("storage.minio.domain"),
			},
		},

		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: viper.GetInt("redis.cache_ttl"),
		},
	}

	// Set default values
	if Cfg.Port == "" {
		Cfg.Port = "7280"
	}
	if Cfg.DataDirectory == "" {
		Cfg.DataDirectory = "./data"
	}
	if Cfg.SessionDirectory == "" {
		Cfg.SessionDirectory = filepath.Join(Cfg.DataDirectory, "session")
	}
	if Cfg.Database.Type == "" {
		Cfg.Database.Type = "sqlite"
	}
	if Cfg.Database.Path == "" {
		Cfg.Database.Path = filepath.Join(Cfg.DataDirectory, "teledrive.db")
	}
	if Cfg.Database.MaxOpenConns == 0 {
		Cfg.Database.MaxOpenConns = 100
	}
	if Cfg.Database.MaxIdleConns == 0 {
		Cfg.Database.MaxIdleConns = 10
	}
	if Cfg.Scanner.MaxConcurrentScans == 0 {
		Cfg.Scanner.MaxConcurrentScans = 4
	}
	if Cfg.Scanner.BatchSize == 0 {
		Cfg.Scanner.BatchSize = 50
	}
	if Cfg.Scanner.StallTimeoutSeconds == 0 {
		Cfg.Scanner.StallTimeoutSeconds = 120
	}
	if Cfg.Scanner.DownloadChunkSize == 0 {
		Cfg.Scanner.DownloadChunkSize = 1024 * 1024 // 1 MiB
	}
	if Cfg.Scanner.ControlTimeoutSecs == 0 {
		Cfg.Scanner.ControlTimeoutSecs = 30
	}
	if Cfg.Scanner.DownloadTimeoutSecs == 0 {
		Cfg.Scanner.DownloadTimeoutSecs = 300
	}
	if Cfg.Scanner.MaxRetries == 0 {
		Cfg.Scanner.MaxRetries = 3
	}
	if Cfg.Uploader.DefaultTarget == "" {
		Cfg.Uploader.DefaultTarget = "local"
	}
	if Cfg.Uploader.MaxFileSize == 0 {
		Cfg.Uploader.MaxFileSize = 2 * 1024 * 1024 * 1024 // 2GB, the upstream per-file cap
	}
	if Cfg.Storage.Type == "" {
		Cfg.Storage.Type = "local"
	}
	if Cfg.Storage.Local.BasePath == "" {
		Cfg.Storage.Local.BasePath = filepath.Join(Cfg.DataDirectory, "files")
	}
	if Cfg.Redis.CacheTTL == 0 {
		Cfg.Redis.CacheTTL = 300
	}
	if Cfg.SwaggerBaseUrl == "" {
		Cfg.SwaggerBaseUrl = "localhost:" + Cfg.Port
	}

	// Ensure the data tree exists before anything opens files beneath it
	if err := os.MkdirAll(Cfg.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(Cfg.SessionDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// SessionFilePath returns the portable session artifact path
func SessionFilePath() string {
	return filepath.Join(Cfg.SessionDirectory, "teledrive.session")
}
