package registry

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	instance *AgentRegistry
	once     sync.Once
	loadErr  error
)

// Load reads and parses the registry definition file at the given path and
// enforces the registry invariants. A structurally invalid registry fails the
// load with every violation listed, not just the first.
func Load(path string) (*AgentRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read agent registry '%s': %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a registry from raw YAML. Split out from Load so callers with
// an in-memory definition (tests, embedded defaults) can use the same path.
func Parse(raw []byte) (*AgentRegistry, error) {
	var reg AgentRegistry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse agent registry: %w", err)
	}
	if reg.Tools == nil || reg.Agents == nil {
		return nil, fmt.Errorf("invalid agent registry structure: missing tools or agents")
	}

	reg.buildIndex()

	if result := reg.Validate(); !result.Valid {
		return nil, fmt.Errorf("agent registry failed validation: %s", strings.Join(result.Errors, "; "))
	}
	return &reg, nil
}

// Default returns the process-wide registry, loading it from the given path
// on first call. Later calls return the cached instance and ignore the path.
func Default(path string) (*AgentRegistry, error) {
	once.Do(func() {
		instance, loadErr = Load(path)
	})
	return instance, loadErr
}
