package config

import (
	"fmt"
	"strings"
)

// validate checks the loaded configuration for internal consistency.
func validate(cfg *Config) error {
	if cfg.Global.PingInterval <= 0 {
		return fmt.Errorf("global.ping_interval must be positive")
	}
	if cfg.Global.MaxMissed <= 0 {
		return fmt.Errorf("global.max_missed must be positive")
	}

	if cfg.Reports.Enabled {
		if cfg.Reports.Port <= 0 || cfg.Reports.Port > 65535 {
			return fmt.Errorf("reports.port must be between 1 and 65535")
		}
	}

	if cfg.MQTT.Enabled && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	if cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	for name, sys := range cfg.Systems {
		if !sys.Enabled {
			continue
		}

		mode := strings.ToLower(sys.Mode)
		if mode != "master" && mode != "peer" {
			return fmt.Errorf("system %s: invalid mode %q (must be master or peer)", name, sys.Mode)
		}

		if sys.Port <= 0 || sys.Port > 65535 {
			return fmt.Errorf("system %s: port must be between 1 and 65535", name)
		}
		if sys.Passphrase == "" {
			return fmt.Errorf("system %s: passphrase is required", name)
		}

		switch mode {
		case "peer":
			if sys.MasterAddress == "" {
				return fmt.Errorf("system %s: master_address is required for peer mode", name)
			}
			if sys.MasterPort <= 0 || sys.MasterPort > 65535 {
				return fmt.Errorf("system %s: master_port must be between 1 and 65535", name)
			}
			if sys.PeerID == 0 {
				return fmt.Errorf("system %s: peer_id is required for peer mode", name)
			}
		}
	}

	return nil
}
