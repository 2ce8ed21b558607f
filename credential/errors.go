package credential

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDesktopClient no desktop client session tree was found
	ErrNoDesktopClient = errors.New("desktop client session directory not found")

	// ErrNotAuthenticated the tree exists but holds no logged-in account
	ErrNotAuthenticated = errors.New("desktop client is not authenticated")

	// ErrCredentialCorrupt decryption or MAC verification failed; never retried
	ErrCredentialCorrupt = errors.New("desktop client session data is corrupt")
)

// UnsupportedLayoutError the tree does not match a known on-disk layout
type UnsupportedLayoutError struct {
	Report *LayoutReport
}

func (e *UnsupportedLayoutError) Error() string {
	if e.Report == nil {
		return "unsupported desktop client layout"
	}
	return fmt.Sprintf("unsupported desktop client layout at %s", e.Report.Path)
}
