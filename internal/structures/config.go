package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" validate:"required|in:file,sqlite,memory"`
	Path        string `yaml:"path"`
	Compression string `yaml:"compression" validate:"in:zstd,snappy,none"`
}

type RetryConfig struct {
	Retries int           `yaml:"retries" validate:"min:0|max:10"`
	Delay   time.Duration `yaml:"delay" validate:"min:0"`
}

type SyncConfig struct {
	ItemTimeout   time.Duration `yaml:"itemTimeout" validate:"required|min:1"`
	ProbeURL      string        `yaml:"probeUrl" validate:"required|fullUrl"`
	ProbeInterval time.Duration `yaml:"probeInterval" validate:"required|min:1"`
	ProbeTimeout  time.Duration `yaml:"probeTimeout" validate:"required|min:1"`
}

type RemoteConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode       uint32 `yaml:"mode" validate:"required|uint"`
	Dir        string `yaml:"dir" validate:"required|unixPath"`
	MaxSizeMb  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientId"`
	Topic    string `yaml:"topic"`
	QoS      uint8  `yaml:"qos" validate:"max:2"`
}

type NotifyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Retry     RetryConfig   `yaml:"retry"`
	Sync      SyncConfig    `yaml:"sync"`
	Remote    RemoteConfig  `yaml:"remote"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
	MQTT      MQTTConfig    `yaml:"mqtt"`
	Notify    NotifyConfig  `yaml:"notify"`
}
