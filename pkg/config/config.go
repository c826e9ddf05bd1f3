package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the FNE core's full configuration (spec.md §6: INI-style
// sections Global, Reports, Log, Aliases, ExportAMBE, PacketData,
// Database, MQTT, Metrics, plus one section per system).
type Config struct {
	Global     GlobalConfig            `mapstructure:"global"`
	Reports    ReportsConfig            `mapstructure:"reports"`
	Log        LogConfig                `mapstructure:"log"`
	Aliases    AliasesConfig            `mapstructure:"aliases"`
	ExportAMBE ExportAMBEConfig         `mapstructure:"exportambe"`
	PacketData PacketDataConfig         `mapstructure:"packetdata"`
	Database   DatabaseConfig           `mapstructure:"database"`
	MQTT       MQTTConfig               `mapstructure:"mqtt"`
	Metrics    MetricsConfig            `mapstructure:"metrics"`
	Systems    map[string]SystemConfig  `mapstructure:"systems"`
}

// GlobalConfig holds the ping/timeout/RCON settings shared by every system.
type GlobalConfig struct {
	PingInterval      int    `mapstructure:"ping_interval"`      // seconds
	MaxMissed         int    `mapstructure:"max_missed"`
	ReloadInterval    int    `mapstructure:"reload_interval"`    // seconds; rules reload cadence
	RuleTimerInterval int    `mapstructure:"rule_timer_interval"` // seconds; ON/OFF timer tick
	StreamTimeout     int    `mapstructure:"stream_timeout"`     // milliseconds
	RCONToolPath      string `mapstructure:"rcon_tool_path"`
	RulesFile         string `mapstructure:"rules_file"`
}

// ReportsConfig configures the length-prefixed TCP reporting channel.
type ReportsConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Port         int      `mapstructure:"port"`
	Interval     int      `mapstructure:"interval"` // seconds
	AllowedIPs   []string `mapstructure:"allowed_ips"`
}

// LogConfig holds structured logger configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// AliasesConfig points at the local CSV reference files (spec.md §6:
// "Alias files: CSV with columns id,name").
type AliasesConfig struct {
	Path              string `mapstructure:"path"`
	AliasFilename     string `mapstructure:"alias_filename"`
	WhitelistFilename string `mapstructure:"whitelist_filename"`
	BlacklistFilename string `mapstructure:"blacklist_filename"`
}

// ExportAMBEConfig configures the AMBE audio side-channel export —
// spec.md §1 names this an external collaborator; the core only
// carries its connection settings, it never encodes/decodes audio.
type ExportAMBEConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Socket  string `mapstructure:"socket"`
}

// PacketDataConfig configures the PDU/packet-data side-channel,
// likewise an external collaborator per spec.md §1.
type PacketDataConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Socket  string `mapstructure:"socket"`
}

// DatabaseConfig configures the optional call-record persistence layer.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MQTTConfig holds MQTT event bridge configuration.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds the /metrics HTTP exposition settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// SystemConfig is one DMR/P25 system (spec.md §6: "Mode ∈
// {master, peer}, Address, Port, Passphrase, Repeat, GroupHangtime,
// and for peer mode: MasterAddress, MasterPort, PeerId, Identity,
// frequencies, location, software id").
type SystemConfig struct {
	Mode    string `mapstructure:"mode"` // "master" or "peer"
	Enabled bool   `mapstructure:"enabled"`

	Address    string `mapstructure:"address"`
	Port       int    `mapstructure:"port"`
	Passphrase string `mapstructure:"passphrase"`

	Repeat        bool    `mapstructure:"repeat"`
	GroupHangtime float64 `mapstructure:"group_hangtime"` // seconds

	// Peer-mode fields.
	MasterAddress string  `mapstructure:"master_address"`
	MasterPort    int     `mapstructure:"master_port"`
	PeerID        uint32  `mapstructure:"peer_id"`
	Identity      string  `mapstructure:"identity"`
	RXFreq        uint32  `mapstructure:"rx_freq"`
	TXFreq        uint32  `mapstructure:"tx_freq"`
	TXPower       int     `mapstructure:"tx_power"`
	ColorCode     int     `mapstructure:"color_code"`
	Latitude      float64 `mapstructure:"latitude"`
	Longitude     float64 `mapstructure:"longitude"`
	Height        int     `mapstructure:"height"`
	Location      string  `mapstructure:"location"`
	Description   string  `mapstructure:"description"`
	URL           string  `mapstructure:"url"`
	SoftwareID    string  `mapstructure:"software_id"`
	PackageID     string  `mapstructure:"package_id"`
	RCONPort      int     `mapstructure:"rcon_port"`
	RCONPassword  string  `mapstructure:"rcon_password"`
}

// PingIntervalDuration returns Global.PingInterval as a time.Duration.
func (c *GlobalConfig) PingIntervalDuration() time.Duration {
	return time.Duration(c.PingInterval) * time.Second
}

// StreamTimeoutDuration returns Global.StreamTimeout as a time.Duration.
func (c *GlobalConfig) StreamTimeoutDuration() time.Duration {
	return time.Duration(c.StreamTimeout) * time.Millisecond
}

// Load loads configuration from path, auto-detecting INI vs YAML from
// the file extension, and binds environment variables with the FNE
// prefix. A missing configFile falls back to defaults plus any
// discovered config.{yaml,ini} in the search paths.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		ext := strings.ToLower(filepath.Ext(configFile))
		if ext == ".ini" {
			viper.SetConfigType("ini")
		} else {
			viper.SetConfigType("yaml")
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/fned")
	}

	viper.SetEnvPrefix("FNE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found; defaults stand.
		} else if os.IsNotExist(err) {
			// Explicitly named file doesn't exist; defaults stand.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("global.ping_interval", 5)
	viper.SetDefault("global.max_missed", 3)
	viper.SetDefault("global.reload_interval", 240)
	viper.SetDefault("global.rule_timer_interval", 60)
	viper.SetDefault("global.stream_timeout", 360)

	viper.SetDefault("reports.enabled", true)
	viper.SetDefault("reports.port", 4321)
	viper.SetDefault("reports.interval", 60)
	viper.SetDefault("reports.allowed_ips", []string{"*"})

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.path", "fned.db")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "fne")
	viper.SetDefault("mqtt.client_id", "fned")
	viper.SetDefault("mqtt.qos", 0)
	viper.SetDefault("mqtt.retained", false)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.prometheus.enabled", false)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
