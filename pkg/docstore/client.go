package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client provides team-scoped Redis operations for documents.
// All keys and channels are automatically namespaced with the team scope.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb  *redis.Client
	team string
}

// NewClient creates a new document client for the specified team scope.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - team: team scope identifier (must not be empty)
//
// Returns an error if team is empty.
func NewClient(redisOpts *redis.Options, team string) (*Client, error) {
	if team == "" {
		return nil, fmt.Errorf("team scope cannot be empty")
	}

	return &Client{
		rdb:  redis.NewClient(redisOpts),
		team: team,
	}, nil
}

// Team returns the team scope this client is bound to.
func (c *Client) Team() string {
	return c.team
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Event is one change-feed notification: the full new value of a document.
type Event struct {
	Key   Key             `json:"key"`
	Value json.RawMessage `json:"value"`
}

// GetDoc reads the current JSON value of a document.
// Returns (nil, redis.Nil) if the document was never written.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetDoc(ctx context.Context, key Key) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, DocKey(c.team, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return data, nil
}

// PutDoc replaces a document's value and publishes a change event.
// The write and the publish run in one MULTI/EXEC so a subscriber never
// sees an event for a value that was not stored.
// Whole-value replacement: there is no partial merge.
func (c *Client) PutDoc(ctx context.Context, key Key, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON value for %s", key)
	}

	event, err := json.Marshal(Event{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal event for %s: %w", key, err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, DocKey(c.team, key), []byte(value), 0)
		pipe.Publish(ctx, DocEventsChannel(c.team), event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to document events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of document events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures; the offending message is skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeDocEvents subscribes to document change events for this team.
// Delivery starts once Redis confirms the subscription; nothing published
// before that is replayed.
//
// Events are delivered on a buffered channel (size 64). Redis Pub/Sub is
// at-most-once, so a connection drop silently loses events.
func (c *Client) SubscribeDocEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, DocEventsChannel(c.team))

	// Wait for the subscribe confirmation so the caller can rely on seeing
	// every event published after this returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to document events: %w", err)
	}

	eventsChan := make(chan *Event, 64)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal document event: %w", err):
					case <-subCtx.Done():
						return
					default:
						// Nobody draining errors; drop it rather than stall events.
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
