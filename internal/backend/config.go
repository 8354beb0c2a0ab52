package backend

import (
	"fmt"

	"prestiti/internal/config"
)

// FromAppConfig converts the application config to a writer config,
// resolving the auto backend against the configured spreadsheet.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.ExportBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid export backend in config: %s", appConfig.ExportBackend)
	}
	if backendType == AutoBackend {
		if appConfig.GoogleSpreadsheetID != "" {
			backendType = SheetsBackend
		} else {
			backendType = NoneBackend
		}
	}

	return Config{
		Type:                backendType,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleLoansSheet:    appConfig.GoogleLoansSheet,
		GoogleAnnualSheet:   appConfig.GoogleAnnualSheet,
	}, nil
}

// Validate validates the writer configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export backend: %s", c.Type)
	}
	if c.Type == AutoBackend {
		return fmt.Errorf("export backend 'auto' must be resolved before use")
	}

	if c.Type == SheetsBackend {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for the sheets backend")
		}
		if c.GoogleLoansSheet == "" || c.GoogleAnnualSheet == "" {
			return fmt.Errorf("Google sheet names are required for the sheets backend")
		}
	}

	return nil
}
