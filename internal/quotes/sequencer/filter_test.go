package sequencer

import (
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

func options() []ServiceOption {
	return []ServiceOption{
		{ID: uuid.New(), Name: "Hotel 2N", ServiceType: "Hotel", NightCount: nights(2)},
		{ID: uuid.New(), Name: "Hotel 3N", ServiceType: "Hotel", NightCount: nights(3)},
		{ID: uuid.New(), Name: "Hotel open", ServiceType: "Hotel"},
		{ID: uuid.New(), Name: "Machu Picchu", ServiceType: "Tour"},
	}
}

func TestFilterOptionsExactNightMatch(t *testing.T) {
	got := DefaultClassifier().FilterOptions(options(), "hotel", day(2025, 6, 1), day(2025, 6, 4))
	if len(got) != 1 || got[0].Name != "Hotel 3N" {
		t.Fatalf("expected only the 3-night hotel, got %+v", got)
	}
}

func TestFilterOptionsIncompleteDatesKeepAllLodging(t *testing.T) {
	got := DefaultClassifier().FilterOptions(options(), "Hotel", day(2025, 6, 1), civil.Date{})
	if len(got) != 3 {
		t.Fatalf("expected all 3 hotels, got %d", len(got))
	}
}

func TestFilterOptionsNonLodgingIgnoresDates(t *testing.T) {
	got := DefaultClassifier().FilterOptions(options(), "Tour", day(2025, 6, 1), day(2025, 6, 4))
	if len(got) != 1 || got[0].Name != "Machu Picchu" {
		t.Fatalf("expected the tour only, got %+v", got)
	}
	if all := DefaultClassifier().FilterOptions(options(), "", day(2025, 6, 1), day(2025, 6, 4)); len(all) != 4 {
		t.Fatalf("expected no filtering without type, got %d", len(all))
	}
}

func TestClassifier(t *testing.T) {
	cls := DefaultClassifier()
	if !cls.IsLodging("HOTEL 4*") || !cls.IsLodging("Alojamiento") || cls.IsLodging("Tour") {
		t.Fatal("unexpected lodging classification")
	}
	if !cls.IsPriceExempt("Vuelo doméstico") || !cls.IsPriceExempt("Tren Perurail") || cls.IsPriceExempt("Hotel") {
		t.Fatal("unexpected price-exempt classification")
	}
}

func TestLoadClassifierFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	content := "lodging:\n  - posada\npriceExempt: []\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cls, err := LoadClassifier(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cls.IsLodging("Posada del Inca") || cls.IsLodging("Hotel") {
		t.Fatal("expected lodging terms from file to replace defaults")
	}
	if !cls.IsPriceExempt("Vuelo") {
		t.Fatal("expected default price-exempt terms to be kept")
	}

	if _, err := LoadClassifier(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
