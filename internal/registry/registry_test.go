package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tradedesk/deskd/internal/domain"
)

func TestNewPreservesOrder(t *testing.T) {
	reg, err := New([]TabDescriptor{
		{Name: "positions", Title: "Positions", Endpoint: "/api/positions"},
		{Name: "orders", Endpoint: "/api/orders"},
		{Name: "settings"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []string{"positions", "orders", "settings"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	for i, tab := range reg.All() {
		if tab.Order != i {
			t.Errorf("tab %s order = %d, want %d", tab.Name, tab.Order, i)
		}
	}
}

func TestNewDefaultsTitleToName(t *testing.T) {
	reg, err := New([]TabDescriptor{{Name: "orders", Endpoint: "/api/orders"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tab, err := reg.Lookup("orders")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tab.Title != "orders" {
		t.Errorf("title = %q, want %q", tab.Title, "orders")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		tabs []TabDescriptor
	}{
		{"empty registry", nil},
		{"nameless tab", []TabDescriptor{{Title: "Positions"}}},
		{"duplicate name", []TabDescriptor{{Name: "orders"}, {Name: "orders"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.tabs); err == nil {
				t.Error("New accepted an invalid registry")
			}
		})
	}
}

func TestLookupUnknownTab(t *testing.T) {
	reg, err := New([]TabDescriptor{{Name: "orders"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Lookup("nope")
	var unknownErr *domain.UnknownTabError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Lookup returned %v, want UnknownTabError", err)
	}
}

func TestHasEndpoint(t *testing.T) {
	if (TabDescriptor{Name: "settings"}).HasEndpoint() {
		t.Error("tab without endpoint reports HasEndpoint")
	}
	if !(TabDescriptor{Name: "orders", Endpoint: "/api/orders"}).HasEndpoint() {
		t.Error("tab with endpoint reports no endpoint")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabs.yaml")
	content := `tabs:
  - name: positions
    title: Positions
    endpoint: /api/positions
  - name: settings
    title: Settings
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tabs file: %v", err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	positions, err := reg.Lookup("positions")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if positions.Endpoint != "/api/positions" {
		t.Errorf("endpoint = %q, want /api/positions", positions.Endpoint)
	}

	settings, err := reg.Lookup("settings")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if settings.HasEndpoint() {
		t.Error("settings tab should have no endpoint")
	}
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadFile accepted a missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tabs.yaml")
		if err := os.WriteFile(path, []byte("tabs: ["), 0o644); err != nil {
			t.Fatalf("write tabs file: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("LoadFile accepted malformed YAML")
		}
	})
}
