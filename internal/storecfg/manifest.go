package storecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/modules"
)

// ManifestModule describes one module of a load manifest.
type ManifestModule struct {
	Name           string `yaml:"name"`
	BuildID        string `yaml:"buildid"`
	Placeholder    bool   `yaml:"placeholder"`
	BinaryPath     string `yaml:"binaryPath"`
	SymbolFileHint string `yaml:"symbolFileHint"`
}

// LaunchSpec names the manifest module whose resolved binary forms
// the debugger launch command, plus the program arguments to append.
type LaunchSpec struct {
	Module string   `yaml:"module"`
	Args   []string `yaml:"args"`
}

// Manifest is a YAML list of modules to run a batch load over, with
// an optional launch section.
type Manifest struct {
	Modules []ManifestModule `yaml:"modules"`
	Launch  *LaunchSpec      `yaml:"launch"`
}

// LoadManifest reads and validates a YAML module manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, mod := range m.Modules {
		if mod.Name == "" {
			return nil, fmt.Errorf("manifest module %d: name is required", i)
		}
		if mod.BuildID != "" {
			if _, err := buildid.FromHex(mod.BuildID); err != nil {
				return nil, fmt.Errorf("manifest module %q: %w", mod.Name, err)
			}
		}
		if mod.Placeholder && mod.BinaryPath != "" {
			return nil, fmt.Errorf("manifest module %q: placeholder modules cannot carry a binaryPath", mod.Name)
		}
	}
	if m.Launch != nil {
		if m.Launch.Module == "" {
			return nil, fmt.Errorf("manifest launch: module is required")
		}
		found := false
		for _, mod := range m.Modules {
			if mod.Name == m.Launch.Module {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("manifest launch: module %q is not in the manifest", m.Launch.Module)
		}
	}
	return &m, nil
}

// ToModules converts the manifest entries into loader modules.
func (m *Manifest) ToModules() ([]modules.Module, error) {
	out := make([]modules.Module, 0, len(m.Modules))
	for _, entry := range m.Modules {
		id := buildid.Empty
		if entry.BuildID != "" {
			parsed, err := buildid.FromHex(entry.BuildID)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", entry.Name, err)
			}
			id = parsed
		}
		if entry.Placeholder || entry.BinaryPath == "" {
			out = append(out, modules.NewPlaceholderModule(entry.Name, id, entry.SymbolFileHint))
			continue
		}
		out = append(out, modules.NewBackedModule(entry.Name, id, entry.BinaryPath, entry.SymbolFileHint))
	}
	return out, nil
}
