package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one audit trail entry: an auth event or a gate decision.
type Event struct {
	Type          string
	UserID        string
	Role          string
	Path          string
	Decision      string
	RequiredRoles []string
	Metadata      map[string]any
}

// Buffer collects audit events in memory and periodically flushes them to
// the _events table in a batch insert. A nil *Buffer is a valid no-op
// recorder, which is how the audit trail is disabled.
type Buffer struct {
	mu      sync.Mutex
	events  []Event
	pool    *pgxpool.Pool
	maxSize int
	ticker  *time.Ticker
	done    chan struct{}
}

// NewBuffer creates a buffer that flushes on a timer or when full.
func NewBuffer(pool *pgxpool.Pool, maxSize int, flushIntervalMs int) *Buffer {
	b := &Buffer{
		pool:    pool,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	b.ticker = time.NewTicker(time.Duration(flushIntervalMs) * time.Millisecond)
	go b.run()
	return b
}

func (b *Buffer) run() {
	for {
		select {
		case <-b.done:
			return
		case <-b.ticker.C:
			b.Flush()
		}
	}
}

// Enqueue adds an event. If the buffer is full, a flush is triggered
// asynchronously.
func (b *Buffer) Enqueue(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, event)
	shouldFlush := len(b.events) >= b.maxSize
	b.mu.Unlock()
	if shouldFlush {
		go b.Flush()
	}
}

// RecordDecision satisfies the access gate's Recorder interface.
func (b *Buffer) RecordDecision(userID, role, path, decision string, requiredRoles []string) {
	b.Enqueue(Event{
		Type:          "access_decision",
		UserID:        userID,
		Role:          role,
		Path:          path,
		Decision:      decision,
		RequiredRoles: requiredRoles,
	})
}

// Flush writes all buffered events to the database in a single batch insert.
func (b *Buffer) Flush() {
	if b == nil {
		return
	}
	b.mu.Lock()
	if len(b.events) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.events
	b.events = nil
	b.mu.Unlock()

	ctx := context.Background()
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		log.Printf("ERROR: audit buffer acquire conn: %v", err)
		return
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Printf("ERROR: audit buffer begin tx: %v", err)
		return
	}

	// Audit writes are best-effort; losing one on a crash is acceptable.
	_, err = tx.Exec(ctx, "SET LOCAL synchronous_commit = off")
	if err != nil {
		tx.Rollback(ctx)
		log.Printf("ERROR: audit buffer set sync commit: %v", err)
		return
	}

	cols := []string{"event_type", "user_id", "role", "path", "decision", "required_roles", "metadata"}
	var placeholders []string
	var args []any
	for i, e := range batch {
		offset := i * len(cols)
		ph := make([]string, len(cols))
		for j := range cols {
			ph[j] = fmt.Sprintf("$%d", offset+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ",")+")")

		var metaJSON any
		if e.Metadata != nil {
			data, _ := json.Marshal(e.Metadata)
			metaJSON = string(data)
		}
		required := e.RequiredRoles
		if required == nil {
			required = []string{}
		}

		args = append(args, e.Type, e.UserID, e.Role, e.Path, e.Decision, required, metaJSON)
	}

	sql := fmt.Sprintf("INSERT INTO _events (%s) VALUES %s",
		strings.Join(cols, ","), strings.Join(placeholders, ","))
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		tx.Rollback(ctx)
		log.Printf("ERROR: audit buffer insert: %v", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("ERROR: audit buffer commit: %v", err)
	}
}

// Stop halts the background ticker and flushes remaining events.
func (b *Buffer) Stop() {
	if b == nil {
		return
	}
	if b.ticker != nil {
		b.ticker.Stop()
	}
	close(b.done)
	b.Flush()
}
