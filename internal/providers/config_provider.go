package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"weightsync/internal/structures"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/weightsync.db")
	v.SetDefault("storage.compression", "zstd")
	v.SetDefault("retry.retries", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("sync.itemTimeout", 10*time.Second)
	v.SetDefault("sync.probeInterval", 5*time.Second)
	v.SetDefault("sync.probeTimeout", 2*time.Second)
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.maxSizeMb", 50)
	v.SetDefault("logger.maxBackups", 5)
	v.SetDefault("cache.ttl", 2*time.Second)
	v.SetDefault("metrics.refreshInterval", 30*time.Second)
	v.SetDefault("mqtt.clientId", "weightsync")
	v.SetDefault("mqtt.topic", "scale/+/weight")
	v.SetDefault("mqtt.qos", 1)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "WEIGHTSYNC_LOG_LEVEL")
	_ = v.BindEnv("storage.driver", "WEIGHTSYNC_STORAGE_DRIVER")
	_ = v.BindEnv("storage.path", "WEIGHTSYNC_STORAGE_PATH")
	_ = v.BindEnv("remote.baseUrl", "WEIGHTSYNC_REMOTE_URL")
	_ = v.BindEnv("remote.token", "WEIGHTSYNC_REMOTE_TOKEN")
	_ = v.BindEnv("sync.probeUrl", "WEIGHTSYNC_PROBE_URL")
	_ = v.BindEnv("mqtt.broker", "WEIGHTSYNC_MQTT_BROKER")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "WeightSync"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
