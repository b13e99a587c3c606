// Package config provides configuration structures and loading for gisadmin.
package config

// DefaultIDField is the identifier field assumed for tables that do not name one.
const DefaultIDField = "OBJECTID"

// Config represents the complete application configuration.
type Config struct {
	Workspace WorkspaceConfig        `yaml:"workspace" mapstructure:"workspace"`
	Tables    map[string]TableConfig `yaml:"tables" mapstructure:"tables"`
	Transfer  TransferConfig         `yaml:"transfer" mapstructure:"transfer"`
	Portal    PortalConfig           `yaml:"portal" mapstructure:"portal"`
	Species   SpeciesConfig          `yaml:"species" mapstructure:"species"`
	Logging   LoggingConfig          `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// WorkspaceConfig is the MySQL database that holds the GIS tables.
type WorkspaceConfig struct {
	DatabaseConfig `yaml:",inline" mapstructure:",squash"`
	AliasTable     string `yaml:"alias_table" mapstructure:"alias_table"`
}

// TableConfig names a table in the workspace and its unique identifier field.
type TableConfig struct {
	Table   string `yaml:"table" mapstructure:"table"`
	IDField string `yaml:"id_field" mapstructure:"id_field"`
}

// TransferConfig holds defaults for the attribute transfer commands.
// ResetSelection applies to long-lived engines; the CLI drops its selections
// when each command exits either way.
type TransferConfig struct {
	MaxSelection   int  `yaml:"max_selection" mapstructure:"max_selection"`
	ResetSelection bool `yaml:"reset_selection" mapstructure:"reset_selection"`
}

// PortalConfig represents the web content portal connection.
type PortalConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	Token          string `yaml:"token" mapstructure:"token"`
	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	MaxItems       int    `yaml:"max_items" mapstructure:"max_items"`
	MaxUsers       int    `yaml:"max_users" mapstructure:"max_users"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RetryMax       int    `yaml:"retry_max" mapstructure:"retry_max"`
}

// SpeciesConfig represents the NPSpecies REST service settings.
type SpeciesConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	UnitListURL    string `yaml:"unit_list_url" mapstructure:"unit_list_url"`
	ListType       string `yaml:"list_type" mapstructure:"list_type"` // checklist, detaillist, fulllist
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RetryMax       int    `yaml:"retry_max" mapstructure:"retry_max"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			DatabaseConfig: DatabaseConfig{
				Port:               3306,
				TLS:                "preferred",
				MaxConnections:     4,
				MaxIdleConnections: 2,
			},
			AliasTable: "gis_field_alias",
		},
		Transfer: TransferConfig{
			MaxSelection:   1,
			ResetSelection: true,
		},
		Portal: PortalConfig{
			PageSize:       100,
			MaxItems:       500,
			MaxUsers:       10000,
			TimeoutSeconds: 30,
			RetryMax:       2,
		},
		Species: SpeciesConfig{
			BaseURL:        "https://irmaservices.nps.gov/NPSpecies/v3/rest/",
			UnitListURL:    "https://services1.arcgis.com/fBc8EJBxQRMcHlei/arcgis/rest/services/NPS_Land_Resources_Division_Boundary_and_Tract_Data_Service/FeatureServer/0/query?where=1%3D1&outFields=UNIT_CODE&f=json",
			ListType:       "checklist",
			TimeoutSeconds: 45,
			RetryMax:       2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// GetTable returns the table configuration registered under name. Names that are
// not registered are treated as literal table names with the default id field.
func (c *Config) GetTable(name string) TableConfig {
	if tc, ok := c.Tables[name]; ok {
		if tc.Table == "" {
			tc.Table = name
		}
		if tc.IDField == "" {
			tc.IDField = DefaultIDField
		}
		return tc
	}
	return TableConfig{Table: name, IDField: DefaultIDField}
}
