package schema

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/neurobagel/digest/bagel"
	"github.com/neurobagel/digest/internal/types"
)

//go:embed schemas/*.json
var builtinFS embed.FS

// builtinFiles maps the flavors shipped with the module to their embedded
// definition files.
var builtinFiles = []struct {
	flavor bagel.Flavor
	path   string
}{
	{bagel.FlavorImaging, "schemas/bagel_schema.json"},
	{bagel.FlavorPhenotypic, "schemas/bagel_schema_pheno.json"},
}

// Registry holds parsed schema flavors. Builtin flavors are parsed once at
// construction; additional flavors can be registered from a directory.
// Parsed schemas are immutable, so lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	logger  *slog.Logger
}

// NewRegistry builds a registry with the builtin flavors loaded. A malformed
// builtin definition is a programming error and fails construction.
func NewRegistry(logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		schemas: make(map[string]*Schema),
		logger:  logger,
	}

	for _, builtin := range builtinFiles {
		data, err := builtinFS.ReadFile(builtin.path)
		if err != nil {
			return nil, fmt.Errorf("reading builtin schema %s: %w", builtin.path, err)
		}
		sch, err := Parse(builtin.flavor.String(), data)
		if err != nil {
			return nil, fmt.Errorf("builtin schema %s: %w", builtin.path, err)
		}
		r.schemas[builtin.flavor.String()] = sch
		logger.Debug("loaded builtin schema",
			"flavor", builtin.flavor.String(),
			"columns", len(sch.Columns()))
	}

	return r, nil
}

// Register parses a schema definition and stores it under the given flavor
// id, replacing any existing registration.
func (r *Registry) Register(id string, data []byte) error {
	if id == "" {
		return types.NewError(types.SCHEMA_PARSE_FAILED, "flavor id cannot be empty")
	}

	sch, err := Parse(id, data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	_, replaced := r.schemas[id]
	r.schemas[id] = sch
	r.mu.Unlock()

	if replaced {
		r.logger.Info("replaced schema flavor", "flavor", id)
	} else {
		r.logger.Debug("registered schema flavor", "flavor", id, "columns", len(sch.Columns()))
	}
	return nil
}

// LoadDir registers every *.json file in dir as a flavor named after the
// file (without extension). Any malformed definition fails the whole load.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.WrapError(types.SCHEMA_PARSE_FAILED, fmt.Sprintf("reading schema directory %s", dir), err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return types.WrapError(types.SCHEMA_PARSE_FAILED, fmt.Sprintf("reading schema file %s", path), err)
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		if err := r.Register(id, data); err != nil {
			return fmt.Errorf("schema file %s: %w", path, err)
		}
		loaded++
	}

	r.logger.Info("loaded schema directory", "dir", dir, "flavors", loaded)
	return nil
}

// Load returns the parsed schema for a flavor id. The parse happened at
// registration time; Load is a cached lookup.
func (r *Registry) Load(id string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sch, ok := r.schemas[id]
	if !ok {
		return nil, types.NewErrorf(types.SCHEMA_NOT_FOUND,
			"no schema registered for flavor %q (known flavors: %s)",
			id, strings.Join(r.flavorsLocked(), ", "))
	}
	return sch, nil
}

// Flavors returns the sorted ids of all registered flavors.
func (r *Registry) Flavors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flavorsLocked()
}

func (r *Registry) flavorsLocked() []string {
	flavors := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		flavors = append(flavors, id)
	}
	sort.Strings(flavors)
	return flavors
}
