package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-storefront-cache/document"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// Collections maps collection name to document id to document fields.
type Collections map[string]map[string]document.Fields

// CatalogPath is the absolute path of the shared catalog fixture, usable
// from any package.
func CatalogPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "catalog.json")
}

// LoadCatalog reads the shared storefront catalog: products, categories,
// promotions, users and one cart.
func LoadCatalog(t *testing.T) Collections {
	t.Helper()

	var out Collections
	LoadFixtureJSON(t, CatalogPath(), &out)
	return out
}

// LoadCollections reads a fixture in the catalog layout from path.
func LoadCollections(t *testing.T, path string) Collections {
	t.Helper()

	var out Collections
	LoadFixtureJSON(t, path, &out)
	return out
}
