package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Settings selects and configures the ledger backend.
type Settings struct {
	Backend     string         `yaml:"backend"`
	Author      string         `yaml:"author"`
	LockStripes int            `yaml:"lock_stripes"`
	SQLite      SQLiteConfig   `yaml:"sqlite"`
	DynamoDB    DynamoDBConfig `yaml:"dynamodb"`
}

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DynamoDBConfig configures the dynamodb backend.
type DynamoDBConfig struct {
	RecordTable  string `yaml:"record_table"`
	AccountTable string `yaml:"account_table"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`

	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string `yaml:"endpoint"`
}

// ValidBackends defines the allowed backend names.
var ValidBackends = []string{"sqlite", "dynamodb"}

// LoadSettings reads a YAML settings file.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

// merge copies values from file into s for every flag the user did not set.
func (s *Settings) merge(file Settings, flags *pflag.FlagSet) {
	pick := func(dst *string, flag, v string) {
		if !flags.Changed(flag) && v != "" {
			*dst = v
		}
	}
	pick(&s.Backend, "backend", file.Backend)
	pick(&s.Author, "author", file.Author)
	pick(&s.SQLite.Path, "db", file.SQLite.Path)
	pick(&s.DynamoDB.RecordTable, "record-table", file.DynamoDB.RecordTable)
	pick(&s.DynamoDB.AccountTable, "account-table", file.DynamoDB.AccountTable)
	pick(&s.DynamoDB.Region, "region", file.DynamoDB.Region)
	pick(&s.DynamoDB.Profile, "profile", file.DynamoDB.Profile)
	pick(&s.DynamoDB.Endpoint, "endpoint", file.DynamoDB.Endpoint)

	if !flags.Changed("lock-stripes") && file.LockStripes != 0 {
		s.LockStripes = file.LockStripes
	}
}

func isValidBackend(backend string) bool {
	for _, b := range ValidBackends {
		if b == backend {
			return true
		}
	}
	return false
}
