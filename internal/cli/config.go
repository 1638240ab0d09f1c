package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/isabella232/gamesym/internal/storecfg"
	"github.com/isabella232/gamesym/internal/symstore"
)

// loadStores loads the configured store chain. Every command that
// touches stores goes through here so config errors carry the same
// exit code everywhere.
func loadStores(opts *RootOptions) (*storecfg.Config, *symstore.SymbolServer, error) {
	if opts.Config == "" {
		return nil, nil, NewExitError(ExitCommandError, "no configuration: pass --config")
	}
	cfg, err := storecfg.LoadConfig(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	server, err := storecfg.Build(cfg, storecfg.BuildOptions{})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "building store chain", err)
	}
	return cfg, server, nil
}

// describeStore renders one store as a single line.
func describeStore(s symstore.SymbolStore) string {
	switch st := s.(type) {
	case *symstore.FlatStore:
		return fmt.Sprintf("flat %s", st.Dir())
	case *symstore.StructuredStore:
		return fmt.Sprintf("structured %s", st.Dir())
	case *symstore.HTTPStore:
		return fmt.Sprintf("http %s", st.BaseURL())
	case *symstore.SymbolServer:
		if st.IsCache() {
			return "server (cache)"
		}
		return "server"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// printStoreTree writes the store tree with two-space indentation per
// nesting level.
func printStoreTree(w io.Writer, s symstore.SymbolStore, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describeStore(s))
	for _, sub := range s.Substores() {
		printStoreTree(w, sub, depth+1)
	}
}

// storeTreeJSON renders the tree as nested objects for JSON output.
func storeTreeJSON(s symstore.SymbolStore) map[string]any {
	node := map[string]any{"store": describeStore(s)}
	subs := s.Substores()
	if len(subs) > 0 {
		children := make([]map[string]any, 0, len(subs))
		for _, sub := range subs {
			children = append(children, storeTreeJSON(sub))
		}
		node["stores"] = children
	}
	return node
}
