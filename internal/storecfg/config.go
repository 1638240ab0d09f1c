// Package storecfg loads the symbol-store chain, download, and
// inclusion configuration from CUE files and builds the runtime store
// tree from it. Module manifests, which drive batch loads without a
// live debugger, are plain YAML.
package storecfg

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// StoreKind names a store constructor in the configuration.
type StoreKind string

const (
	KindFlat       StoreKind = "flat"
	KindStructured StoreKind = "structured"
	KindHTTP       StoreKind = "http"
	KindServer     StoreKind = "server"
)

// StoreSpec is one node of the configured store tree.
type StoreSpec struct {
	Kind   StoreKind
	Path   string      // flat, structured
	URL    string      // http
	Cache  bool        // server
	Stores []StoreSpec // server
}

// InclusionSpec is the configured symbol inclusion policy.
type InclusionSpec struct {
	Mode    string // "all", "include", "exclude"
	Include []string
	Exclude []string
}

// Config is a parsed configuration file.
type Config struct {
	DownloadDir string
	SessionLog  string
	Stores      []StoreSpec
	Inclusion   *InclusionSpec
}

// ConfigError is a configuration load or validation error with the CUE
// source position when one is available.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadConfig reads a CUE configuration file, validates it against the
// embedded schema, and decodes the store tree.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError("config", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("config", err)
	}

	return decodeConfig(unified)
}

func decodeConfig(v cue.Value) (*Config, error) {
	cfg := &Config{}
	var err error

	if dv := v.LookupPath(cue.ParsePath("downloadDir")); dv.Exists() {
		if cfg.DownloadDir, err = dv.String(); err != nil {
			return nil, formatCUEError("downloadDir", err)
		}
	}
	if sv := v.LookupPath(cue.ParsePath("sessionLog")); sv.Exists() {
		if cfg.SessionLog, err = sv.String(); err != nil {
			return nil, formatCUEError("sessionLog", err)
		}
	}

	storesVal := v.LookupPath(cue.ParsePath("stores"))
	if !storesVal.Exists() {
		return nil, &ConfigError{Field: "stores", Message: "stores list is required", Pos: v.Pos()}
	}
	iter, err := storesVal.List()
	if err != nil {
		return nil, formatCUEError("stores", err)
	}
	for iter.Next() {
		spec, specErr := decodeStore(iter.Value())
		if specErr != nil {
			return nil, specErr
		}
		cfg.Stores = append(cfg.Stores, spec)
	}
	if len(cfg.Stores) == 0 {
		return nil, &ConfigError{Field: "stores", Message: "at least one store is required", Pos: storesVal.Pos()}
	}

	if iv := v.LookupPath(cue.ParsePath("inclusion")); iv.Exists() {
		inc, incErr := decodeInclusion(iv)
		if incErr != nil {
			return nil, incErr
		}
		cfg.Inclusion = inc
	}

	return cfg, nil
}

// decodeStore decodes one store node and checks its per-kind required
// fields, recursing into a server's child stores.
func decodeStore(v cue.Value) (StoreSpec, error) {
	var spec StoreSpec

	kindStr, err := v.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return spec, formatCUEError("stores.kind", err)
	}
	spec.Kind = StoreKind(kindStr)

	switch spec.Kind {
	case KindFlat, KindStructured:
		pathVal := v.LookupPath(cue.ParsePath("path"))
		if !pathVal.Exists() {
			return spec, &ConfigError{Field: "stores.path", Message: fmt.Sprintf("%s store requires a path", spec.Kind), Pos: v.Pos()}
		}
		if spec.Path, err = pathVal.String(); err != nil {
			return spec, formatCUEError("stores.path", err)
		}

	case KindHTTP:
		urlVal := v.LookupPath(cue.ParsePath("url"))
		if !urlVal.Exists() {
			return spec, &ConfigError{Field: "stores.url", Message: "http store requires a url", Pos: v.Pos()}
		}
		if spec.URL, err = urlVal.String(); err != nil {
			return spec, formatCUEError("stores.url", err)
		}

	case KindServer:
		if cacheVal := v.LookupPath(cue.ParsePath("cache")); cacheVal.Exists() {
			if spec.Cache, err = cacheVal.Bool(); err != nil {
				return spec, formatCUEError("stores.cache", err)
			}
		}
		childrenVal := v.LookupPath(cue.ParsePath("stores"))
		if !childrenVal.Exists() {
			return spec, &ConfigError{Field: "stores.stores", Message: "server store requires child stores", Pos: v.Pos()}
		}
		childIter, listErr := childrenVal.List()
		if listErr != nil {
			return spec, formatCUEError("stores.stores", listErr)
		}
		for childIter.Next() {
			child, childErr := decodeStore(childIter.Value())
			if childErr != nil {
				return spec, childErr
			}
			spec.Stores = append(spec.Stores, child)
		}
		if len(spec.Stores) == 0 {
			return spec, &ConfigError{Field: "stores.stores", Message: "server store requires at least one child store", Pos: childrenVal.Pos()}
		}

	default:
		return spec, &ConfigError{Field: "stores.kind", Message: fmt.Sprintf("unknown store kind %q", kindStr), Pos: v.Pos()}
	}

	return spec, nil
}

func decodeInclusion(v cue.Value) (*InclusionSpec, error) {
	inc := &InclusionSpec{}
	var err error

	if inc.Mode, err = v.LookupPath(cue.ParsePath("mode")).String(); err != nil {
		return nil, formatCUEError("inclusion.mode", err)
	}
	if inc.Include, err = decodeStringList(v.LookupPath(cue.ParsePath("include")), "inclusion.include"); err != nil {
		return nil, err
	}
	if inc.Exclude, err = decodeStringList(v.LookupPath(cue.ParsePath("exclude")), "inclusion.exclude"); err != nil {
		return nil, err
	}
	return inc, nil
}

func decodeStringList(v cue.Value, field string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var out []string
	for iter.Next() {
		s, strErr := iter.Value().String()
		if strErr != nil {
			return nil, formatCUEError(field, strErr)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	cerr := &ConfigError{Field: field, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		cerr.Pos = positions[0]
	}
	return cerr
}
