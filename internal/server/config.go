package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address              string `hcl:"address,optional"`
	Port                 int    `hcl:"port,optional"`
	LogLevel             string `hcl:"log_level,optional"`
	ActionTimeoutSeconds int    `hcl:"action_timeout_seconds,optional"`
}

// TableConfig defines a table stake structure
type TableConfig struct {
	Name       string `hcl:"name,label"`
	MaxSeats   int    `hcl:"max_seats,optional"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	BuyInMin   int    `hcl:"buy_in_min,optional"`
	BuyInMax   int    `hcl:"buy_in_max,optional"`
	AutoStart  bool   `hcl:"auto_start,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:              "localhost",
			Port:                 8080,
			LogLevel:             "info",
			ActionTimeoutSeconds: 30,
		},
		Tables: []TableConfig{
			{
				Name:       "main",
				MaxSeats:   6,
				SmallBlind: 1,
				BigBlind:   2,
				BuyInMin:   100,
				BuyInMax:   1000,
				AutoStart:  true,
			},
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// ParseServerConfig decodes configuration from an in-memory HCL document.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ActionTimeoutSeconds == 0 {
		c.Server.ActionTimeoutSeconds = 30
	}

	for i := range c.Tables {
		if c.Tables[i].MaxSeats == 0 {
			c.Tables[i].MaxSeats = 6
		}
		if c.Tables[i].BuyInMin == 0 {
			c.Tables[i].BuyInMin = c.Tables[i].BigBlind * 50 // 50 big blinds minimum
		}
		if c.Tables[i].BuyInMax == 0 {
			c.Tables[i].BuyInMax = c.Tables[i].BigBlind * 500 // 500 big blinds maximum
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ActionTimeoutSeconds < 1 {
		return fmt.Errorf("action timeout must be positive, got %d", c.Server.ActionTimeoutSeconds)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	for _, table := range c.Tables {
		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.Name)
		}
		if table.BigBlind < 2*table.SmallBlind {
			return fmt.Errorf("table %s: big blind must be at least twice the small blind", table.Name)
		}
		if table.MaxSeats < 2 || table.MaxSeats > 10 {
			return fmt.Errorf("table %s: max seats must be between 2 and 10", table.Name)
		}
		if table.BuyInMin >= table.BuyInMax {
			return fmt.Errorf("table %s: buy-in minimum must be less than maximum", table.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table configuration by name
func (c *ServerConfig) GetTableByName(name string) *TableConfig {
	for _, table := range c.Tables {
		if table.Name == name {
			return &table
		}
	}
	return nil
}
