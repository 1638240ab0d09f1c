package modules

import (
	"io"
	"strings"
	"sync"
)

// ModuleSearchLogHolder keeps the append-only search log for each
// module, surfaced later to the user when a load needs explaining.
// Each log is owned by the module it describes and only ever appended
// to; the mutex exists because the holder outlives single batches and
// UI reads can interleave with a running load.
type ModuleSearchLogHolder struct {
	mu   sync.Mutex
	logs map[Module]*strings.Builder
}

// NewModuleSearchLogHolder creates an empty holder.
func NewModuleSearchLogHolder() *ModuleSearchLogHolder {
	return &ModuleSearchLogHolder{logs: make(map[Module]*strings.Builder)}
}

// Writer returns the append sink for m's search log.
func (h *ModuleSearchLogHolder) Writer(m Module) io.Writer {
	return &searchLogWriter{holder: h, module: m}
}

// Get returns m's accumulated search log, or "".
func (h *ModuleSearchLogHolder) Get(m Module) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.logs[m]; ok {
		return b.String()
	}
	return ""
}

// Transfer moves an accumulated log from one module handle to another.
// Needed when a placeholder is replaced by a backed module: the search
// history belongs to the module, not to the handle that happened to
// exist while searching.
func (h *ModuleSearchLogHolder) Transfer(from, to Module) {
	if from == to {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.logs[from]; ok {
		h.logs[to] = b
		delete(h.logs, from)
	}
}

func (h *ModuleSearchLogHolder) append(m Module, p []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.logs[m]
	if !ok {
		b = &strings.Builder{}
		h.logs[m] = b
	}
	b.Write(p)
}

type searchLogWriter struct {
	holder *ModuleSearchLogHolder
	module Module
}

func (w *searchLogWriter) Write(p []byte) (int, error) {
	w.holder.append(w.module, p)
	return len(p), nil
}
