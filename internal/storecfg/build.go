package storecfg

import (
	"fmt"
	"net/http"

	"github.com/isabella232/gamesym/internal/buildid"
	"github.com/isabella232/gamesym/internal/modules"
	"github.com/isabella232/gamesym/internal/symstore"
)

// BuildOptions carries the runtime collaborators the configured stores
// need. Zero values select defaults.
type BuildOptions struct {
	// Reader verifies build ids of files found in directory stores.
	// Nil uses the ELF note reader.
	Reader buildid.Reader

	// Client performs HTTP store lookups. Nil uses
	// http.DefaultClient.
	Client *http.Client
}

// Build constructs the runtime store tree for cfg. The configured
// top-level stores are always wrapped in a single SymbolServer so the
// caller gets one search root with the cascade and miss-cache
// semantics.
func Build(cfg *Config, opts BuildOptions) (*symstore.SymbolServer, error) {
	if opts.Reader == nil {
		opts.Reader = buildid.ELFReader{}
	}

	stores := make([]symstore.SymbolStore, 0, len(cfg.Stores))
	for i, spec := range cfg.Stores {
		store, err := buildStore(spec, opts)
		if err != nil {
			return nil, fmt.Errorf("building store %d: %w", i, err)
		}
		stores = append(stores, store)
	}
	return symstore.NewSymbolServer(stores), nil
}

func buildStore(spec StoreSpec, opts BuildOptions) (symstore.SymbolStore, error) {
	switch spec.Kind {
	case KindFlat:
		return symstore.NewFlatStore(spec.Path, opts.Reader), nil

	case KindStructured:
		return symstore.NewStructuredStore(spec.Path, opts.Reader), nil

	case KindHTTP:
		return symstore.NewHTTPStore(spec.URL, opts.Client), nil

	case KindServer:
		children := make([]symstore.SymbolStore, 0, len(spec.Stores))
		for i, child := range spec.Stores {
			built, err := buildStore(child, opts)
			if err != nil {
				return nil, fmt.Errorf("child store %d: %w", i, err)
			}
			children = append(children, built)
		}
		var serverOpts []symstore.ServerOption
		if spec.Cache {
			serverOpts = append(serverOpts, symstore.MarkedAsCache())
		}
		return symstore.NewSymbolServer(children, serverOpts...), nil

	default:
		return nil, fmt.Errorf("unknown store kind %q", spec.Kind)
	}
}

// InclusionSettings converts the configured inclusion policy into the
// loader's settings type. A nil spec or "all" mode includes
// everything.
func InclusionSettings(inc *InclusionSpec) *modules.SymbolInclusionSettings {
	if inc == nil {
		return nil
	}
	settings := &modules.SymbolInclusionSettings{
		IncludeList: inc.Include,
		ExcludeList: inc.Exclude,
	}
	switch inc.Mode {
	case "include":
		settings.Mode = modules.IncludeListed
	case "exclude":
		settings.Mode = modules.ExcludeListed
	default:
		settings.Mode = modules.IncludeAll
	}
	return settings
}
