package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when a feature is not supported by the selected broker.
	ErrUnsupported = errors.New("messaging: unsupported operation")
	// ErrSubjectRequired is returned when the destination or source is empty.
	ErrSubjectRequired = errors.New("messaging: subject is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("messaging: client closed")
)

// Messaging is a broker client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer

	// Ping reports whether the broker connection is usable.
	Ping(ctx context.Context) error
}

// Publisher publishes messages to a destination subject.
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source subject.
//
// Consume blocks until ctx is canceled, then drains in-flight messages.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. With auto-ack enabled a nil error acks
// and a non-nil error nacks.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body    []byte
	Headers []Header
	// Delay requests deferred delivery; neither driver supports it.
	Delay time.Duration
}

// Header is a key/value pair carried with a message.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries broker publish metadata.
type PublishResult struct {
	Subject   string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	// Header returns the first value for key, or "".
	Header(key string) string
	Subject() string
	Timestamp() time.Time

	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
