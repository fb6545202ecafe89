package notification

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SMTPConfig holds connection parameters for the SMTP provider.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromAddr   string `yaml:"from_address"`
	ToAddrs    string `yaml:"to_addresses"`
	Encryption string `yaml:"encryption"` // "none", "starttls", "ssl_tls"
}

// Settings is the notification configuration, loaded per event so edits take
// effect without a restart.
type Settings struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

// LoadSettings reads the notification settings YAML file at filePath. A
// missing file yields disabled settings, not an error.
func LoadSettings(filePath string) (*Settings, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading notification settings %q: %w", filePath, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing notification settings %q: %w", filePath, err)
	}
	return &s, nil
}
