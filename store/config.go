package store

// Config holds configuration for the Store.
type Config struct {
	// RecordTable is the name of the review record table.
	// Default: "moviereview_records"
	RecordTable string

	// AccountTable is the name of the author reservation table.
	// Default: "moviereview_accounts"
	AccountTable string
}

// DefaultConfig returns the default table names.
func DefaultConfig() Config {
	return Config{
		RecordTable:  "moviereview_records",
		AccountTable: "moviereview_accounts",
	}
}

// validate fills in defaults for blank values.
func (c *Config) validate() {
	if c.RecordTable == "" {
		c.RecordTable = "moviereview_records"
	}
	if c.AccountTable == "" {
		c.AccountTable = "moviereview_accounts"
	}
}
