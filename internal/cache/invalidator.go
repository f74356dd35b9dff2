package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// invalidation is the broadcast envelope. Node identifies the publishing
// process so subscribers skip their own messages, and applying a broadcast
// goes through a non-publishing delete: a key invalidated on one node
// crosses the wire exactly once instead of echoing between nodes.
type invalidation struct {
	Node string `json:"node"`
	Key  string `json:"key"`
}

// Invalidator broadcasts cache key invalidations between nodes over NATS.
// Publishing is best-effort like every other cache operation: a failed
// publish is logged and dropped, and the key's TTL bounds the resulting
// staleness on nodes that missed it.
type Invalidator struct {
	conn    *nats.Conn
	subject string
	nodeID  string
}

// NewInvalidator connects to NATS. Subject defaults to "dungeon.cache.invalidate".
func NewInvalidator(url, subject string) (*Invalidator, error) {
	if subject == "" {
		subject = "dungeon.cache.invalidate"
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	nodeID := uuid.NewString()
	slog.Info("cache invalidator connected", "url", url, "subject", subject, "node", nodeID)
	return &Invalidator{conn: conn, subject: subject, nodeID: nodeID}, nil
}

// Publish broadcasts an invalidated key.
func (i *Invalidator) Publish(_ context.Context, key string) {
	data, err := json.Marshal(invalidation{Node: i.nodeID, Key: key})
	if err != nil {
		slog.Debug("invalidation encode fault", "key", key, "error", err)
		return
	}
	if err := i.conn.Publish(i.subject, data); err != nil {
		slog.Debug("invalidation publish fault", "key", key, "error", err)
	}
}

// Subscribe applies broadcast invalidations to the local cache until the
// context is cancelled.
func (i *Invalidator) Subscribe(ctx context.Context, local Cache) error {
	sub, err := i.conn.Subscribe(i.subject, func(msg *nats.Msg) {
		i.apply(msg.Data, local)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", i.subject, err)
	}

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		slog.Debug("unsubscribe fault", "subject", i.subject, "error", err)
	}
	return ctx.Err()
}

// apply handles one broadcast message. Messages this node published are
// skipped, and the deletion goes through dropLocal so it is never
// re-broadcast.
func (i *Invalidator) apply(data []byte, local Cache) {
	var msg invalidation
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Debug("dropping malformed invalidation", "error", err)
		return
	}
	if msg.Node == i.nodeID {
		return
	}
	dropLocal(context.Background(), local, msg.Key)
	slog.Debug("applied broadcast invalidation", "key", msg.Key, "node", msg.Node)
}

// dropLocal removes a key without re-broadcasting the deletion.
func dropLocal(ctx context.Context, c Cache, key string) {
	if rc, ok := c.(*RedisCache); ok {
		rc.drop(ctx, key)
		return
	}
	c.Delete(ctx, key)
}

// Close drains and closes the NATS connection.
func (i *Invalidator) Close() {
	if err := i.conn.Drain(); err != nil {
		slog.Debug("nats drain fault", "error", err)
	}
}
