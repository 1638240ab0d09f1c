package symstore

import (
	"errors"
	"fmt"
)

// ErrAddFileUnsupported is returned by store kinds that cannot accept
// published files (flat directories, HTTP servers).
var ErrAddFileUnsupported = errors.New("store does not support adding files")

// NoUsableStoresError reports an AddFile across an aggregate in which
// zero child stores accepted the file.
type NoUsableStoresError struct {
	// Filename is the name the file was published under.
	Filename string
}

// Error implements the error interface.
func (e *NoUsableStoresError) Error() string {
	return fmt.Sprintf("no usable store accepted %q", e.Filename)
}

// IsNoUsableStores returns true if the error indicates that no child
// store accepted a published file. Uses errors.As to handle wrapped
// errors.
func IsNoUsableStores(err error) bool {
	var e *NoUsableStoresError
	return errors.As(err, &e)
}
