// Package telegram defines the messaging client capability surface consumed
// by the scan and file services. Concrete wire drivers implement Client;
// everything above this package depends only on the interface.
package telegram

import (
	"context"
	"io"
	"time"
)

// Direction walk order over a channel history
type Direction string

const (
	NewestFirst Direction = "newest_first"
	OldestFirst Direction = "oldest_first"
)

// Entity a resolved channel, group or user
type Entity struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"-"`
	Title      string `json:"title"`
	Username   string `json:"username"`
	Kind       string `json:"kind"` // channel, group, user
}

// MediaDescriptor addresses one downloadable media payload
type MediaDescriptor struct {
	ChannelID     int64
	MessageID     int64
	FileReference []byte
	Size          int64
	MimeType      string
}

// Message one channel message as seen by the walker. Media is nil for
// text-only messages.
type Message struct {
	ID       int64
	Date     time.Time
	Text     string
	Filename string
	Media    *MediaDescriptor
}

// MessageIterator single-pass iterator over a channel history. Next returns
// io.EOF when the walk is exhausted.
type MessageIterator interface {
	Next(ctx context.Context) (*Message, error)
	Close() error
}

// IterOptions walk parameters for IterMessages
type IterOptions struct {
	Direction   Direction
	BatchSize   int
	MaxMessages int64 // 0 means unbounded
	OffsetID    int64
}

// Client the messaging capability surface. All blocking calls take a context
// and honor its cancellation.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsAuthorized(ctx context.Context) (bool, error)

	// ResolveEntity maps a parsed handle to an entity.
	ResolveEntity(ctx context.Context, handle Handle) (*Entity, error)

	// CountMessages best-effort total for progress reporting; -1 = unknown.
	CountMessages(ctx context.Context, entity *Entity) (int64, error)

	// IterMessages starts a history walk over entity.
	IterMessages(ctx context.Context, entity *Entity, opts IterOptions) (MessageIterator, error)

	// DownloadMedia streams the payload behind desc into sink.
	DownloadMedia(ctx context.Context, desc *MediaDescriptor, sink io.Writer) (int64, error)

	// SendMedia uploads payload as a document to entity and returns the
	// created message.
	SendMedia(ctx context.Context, entity *Entity, filename, mimeType string, size int64, payload io.Reader) (*Message, error)
}
