package backend

import (
	"context"
	"testing"

	"prestiti/internal/config"
)

func TestFromAppConfig_AutoResolution(t *testing.T) {
	tests := []struct {
		name          string
		exportBackend string
		spreadsheetID string
		want          Type
		wantErr       bool
	}{
		{"auto with spreadsheet", "auto", "abc123", SheetsBackend, false},
		{"auto without spreadsheet", "auto", "", NoneBackend, false},
		{"explicit memory", "memory", "", MemoryBackend, false},
		{"explicit none ignores spreadsheet", "none", "abc123", NoneBackend, false},
		{"unknown type", "ftp", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appCfg := &config.Config{
				ExportBackend:       tt.exportBackend,
				GoogleSpreadsheetID: tt.spreadsheetID,
				GoogleLoansSheet:    "Loans",
				GoogleAnnualSheet:   "Annual",
			}
			cfg, err := FromAppConfig(appCfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got type %s", cfg.Type)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromAppConfig: %v", err)
			}
			if cfg.Type != tt.want {
				t.Errorf("resolved type = %s, want %s", cfg.Type, tt.want)
			}
		})
	}
}

func TestFromAppConfig_NilConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none needs nothing", Config{Type: NoneBackend}, false},
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"unresolved auto", Config{Type: AutoBackend}, true},
		{"sheets without spreadsheet", Config{Type: SheetsBackend, GoogleLoansSheet: "Loans", GoogleAnnualSheet: "Annual"}, true},
		{"sheets without sheet names", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, true},
		{"sheets complete", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc", GoogleLoansSheet: "Loans", GoogleAnnualSheet: "Annual"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFactory_CreateWriter(t *testing.T) {
	factory := NewFactory(nil)

	t.Run("memory backend", func(t *testing.T) {
		result, err := factory.CreateWriter(context.Background(), Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateWriter: %v", err)
		}
		if result.Writer == nil {
			t.Fatal("expected a writer for the memory backend")
		}
	})

	t.Run("none backend", func(t *testing.T) {
		result, err := factory.CreateWriter(context.Background(), Config{Type: NoneBackend})
		if err != nil {
			t.Fatalf("CreateWriter: %v", err)
		}
		if result.Writer != nil {
			t.Fatal("expected no writer for the none backend")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := factory.CreateWriter(context.Background(), Config{Type: AutoBackend}); err == nil {
			t.Fatal("expected error for unresolved auto backend")
		}
	})
}
