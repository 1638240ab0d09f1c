package modules

// InclusionMode selects how SymbolInclusionSettings interprets its
// name lists.
type InclusionMode int

const (
	// IncludeAll processes every module; the lists are ignored.
	IncludeAll InclusionMode = iota

	// IncludeListed processes only modules on the include list;
	// everything else is a skipped no-op that counts as success.
	IncludeListed

	// ExcludeListed processes every module except those on the
	// exclude list.
	ExcludeListed
)

// SymbolInclusionSettings is the per-batch policy for which modules
// get their files loaded. The loader consumes it once per batch and
// never mutates it.
type SymbolInclusionSettings struct {
	Mode        InclusionMode
	IncludeList []string
	ExcludeList []string
}

// IsIncluded reports whether the named module should be processed.
// A nil settings value includes everything.
func (s *SymbolInclusionSettings) IsIncluded(name string) bool {
	if s == nil {
		return true
	}
	switch s.Mode {
	case IncludeListed:
		return containsName(s.IncludeList, name)
	case ExcludeListed:
		return !containsName(s.ExcludeList, name)
	default:
		return true
	}
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
