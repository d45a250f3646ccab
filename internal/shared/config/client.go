package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/pelletier/go-toml/v2"

	"mytunnel_ops/internal/shared/types"
)

// ErrConfigMissing means the client configuration file does not exist.
var ErrConfigMissing = errors.New("client config file not found")

// ClientConfig is a read-only view of the tunnel client's own
// client-config.toml. The file is owned by the client; this tool never
// writes it, and unknown keys are ignored.
type ClientConfig struct {
	Server ServerConf `toml:"server"`
	Proxy  ProxyConf  `toml:"proxy"`
}

type ServerConf struct {
	Address    string `toml:"address"`
	ServerName string `toml:"server_name"`
	Insecure   bool   `toml:"insecure"`
}

type ProxyConf struct {
	Socks5Bind    string `toml:"socks5_bind"`
	HTTPBind      string `toml:"http_bind"`
	Socks5Enabled bool   `toml:"socks5_enabled"`
	HTTPEnabled   bool   `toml:"http_enabled"`
}

// LoadClient reads and decodes the client config. Missing keys keep the
// client's documented defaults; a missing file is fatal because every
// diagnostic needs the server address.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		Proxy: ProxyConf{
			Socks5Bind:    "127.0.0.1:1080",
			HTTPBind:      "127.0.0.1:8080",
			Socks5Enabled: true,
			HTTPEnabled:   true,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run the client installer or pass --config)", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("failed to read client config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config %s: %w", path, err)
	}
	if cfg.Server.Address == "" {
		return nil, fmt.Errorf("client config %s has no server.address", path)
	}
	return cfg, nil
}

// ServerHost returns the host part of server.address. If the address has no
// port it is returned as-is.
func (c *ClientConfig) ServerHost() string {
	host, _, err := net.SplitHostPort(c.Server.Address)
	if err != nil {
		return c.Server.Address
	}
	return host
}

// ServerPort returns the port part of server.address, or "" if absent.
func (c *ClientConfig) ServerPort() string {
	_, port, err := net.SplitHostPort(c.Server.Address)
	if err != nil {
		return ""
	}
	return port
}

// TLSServerName returns the SNI to present: server_name if set, else the
// host from server.address.
func (c *ClientConfig) TLSServerName() string {
	if c.Server.ServerName != "" {
		return c.Server.ServerName
	}
	return c.ServerHost()
}

// Endpoints returns the two local proxy endpoints in test order.
func (c *ClientConfig) Endpoints() []types.ProxyEndpoint {
	return []types.ProxyEndpoint{
		{Kind: types.ProxySOCKS5, BindAddr: c.Proxy.Socks5Bind, Enabled: c.Proxy.Socks5Enabled},
		{Kind: types.ProxyHTTP, BindAddr: c.Proxy.HTTPBind, Enabled: c.Proxy.HTTPEnabled},
	}
}
