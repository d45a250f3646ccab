package config

import (
	"os"

	"gopkg.in/ini.v1"
)

// LogConf contains logging specific configuration.
type LogConf struct {
	Level string `ini:"level"`
}

// APIConf locates the client's local status API.
type APIConf struct {
	BaseURL string `ini:"base_url"`
}

// ProbeConf configures the proxy functional test.
type ProbeConf struct {
	URL string `ini:"url"`
}

// ClientConf locates the external tunnel client binary and service.
type ClientConf struct {
	Binary  string `ini:"binary"`
	Service string `ini:"service"`
	LogFile string `ini:"log_file"`
}

// MonitorConf configures the live monitor.
type MonitorConf struct {
	RefreshSecs int `ini:"refresh_secs"`
}

// OpsConf is the tool's own behavior configuration. Every key has a default,
// so the ops.ini file is optional.
type OpsConf struct {
	LogConf     `ini:"log"`
	APIConf     `ini:"api"`
	ProbeConf   `ini:"probe"`
	ClientConf  `ini:"client"`
	MonitorConf `ini:"monitor"`
}

// DefaultOps returns an OpsConf populated with defaults.
func DefaultOps() *OpsConf {
	return &OpsConf{
		LogConf:     LogConf{Level: "info"},
		APIConf:     APIConf{BaseURL: "http://127.0.0.1:9090"},
		ProbeConf:   ProbeConf{URL: "https://www.cloudflare.com/cdn-cgi/trace"},
		ClientConf:  ClientConf{Binary: "mytunnel-client", Service: "mytunnel-client", LogFile: "/var/log/mytunnel/client.log"},
		MonitorConf: MonitorConf{RefreshSecs: 2},
	}
}

// LoadOps overlays ops.ini onto cfg. A missing file is not an error.
func LoadOps(cfg *OpsConf, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return iniFile.MapTo(cfg)
}
