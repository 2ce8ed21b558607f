package telegram

import (
	"context"
	"fmt"
	"io"
)

// UnavailableClient is the Client used when no wire driver is configured.
// Everything except Connect/Disconnect fails with a descriptive error, so
// credential import, local uploads and metadata queries keep working while
// scans and remote transfers report the missing driver instead of hanging.
type UnavailableClient struct {
	SessionPath string // surfaced in errors to point at the artifact a driver would load
}

// NewUnavailableClient create a client that reports the missing wire driver
func NewUnavailableClient(sessionPath string) *UnavailableClient {
	return &UnavailableClient{SessionPath: sessionPath}
}

func (c *UnavailableClient) errNoDriver() error {
	return fmt.Errorf("no messaging wire driver configured (session artifact at %s): %w", c.SessionPath, ErrNotConnected)
}

// Connect is a no-op; there is nothing to connect
func (c *UnavailableClient) Connect(ctx context.Context) error { return nil }

// Disconnect is a no-op
func (c *UnavailableClient) Disconnect() error { return nil }

// IsAuthorized always reports false
func (c *UnavailableClient) IsAuthorized(ctx context.Context) (bool, error) {
	return false, nil
}

// ResolveEntity fails with the missing-driver error
func (c *UnavailableClient) ResolveEntity(ctx context.Context, handle Handle) (*Entity, error) {
	return nil, c.errNoDriver()
}

// CountMessages fails with the missing-driver error
func (c *UnavailableClient) CountMessages(ctx context.Context, entity *Entity) (int64, error) {
	return 0, c.errNoDriver()
}

// IterMessages fails with the missing-driver error
func (c *UnavailableClient) IterMessages(ctx context.Context, entity *Entity, opts IterOptions) (MessageIterator, error) {
	return nil, c.errNoDriver()
}

// DownloadMedia fails with the missing-driver error
func (c *UnavailableClient) DownloadMedia(ctx context.Context, media *MediaDescriptor, sink io.Writer) (int64, error) {
	return 0, c.errNoDriver()
}

// SendMedia fails with the missing-driver error
func (c *UnavailableClient) SendMedia(ctx context.Context, entity *Entity, filename, mimeType string, size int64, payload io.Reader) (*Message, error) {
	return nil, c.errNoDriver()
}
