// Package notify delivers claim notifications to the in-app inbox. Delivery
// is asynchronous and best-effort: a full queue drops the notification.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Defaults used by New when given non-positive sizes.
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 256
	deliveryTimeout  = 10 * time.Second
)

type job struct {
	userID  int64
	event   string
	payload model.NotificationPayload
}

// Dispatcher queues notifications and writes them from a fixed worker pool.
type Dispatcher struct {
	db    *sql.DB
	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts a dispatcher with the given number of workers and queue size.
func New(db *sql.DB, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	d := &Dispatcher{db: db, queue: make(chan job, queueSize)}
	for range workers {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Notify enqueues a notification without blocking. It returns false when the
// queue is full or the dispatcher is closed.
func (d *Dispatcher) Notify(_ context.Context, userID int64, eventType string, payload model.NotificationPayload) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.Notifications.WithLabelValues(eventType, metrics.OutcomeDropped).Inc()
		return false
	}

	select {
	case d.queue <- job{userID: userID, event: eventType, payload: payload}:
		return true
	default:
		metrics.Notifications.WithLabelValues(eventType, metrics.OutcomeDropped).Inc()
		slog.Warn("notification queue full", "event", eventType, "recipient", userID)
		return false
	}
}

// Close stops accepting notifications and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		outcome, err := d.deliver(j)
		if err != nil {
			slog.Error("delivering notification", "event", j.event, "recipient", j.userID, "error", err)
		}
		metrics.Notifications.WithLabelValues(j.event, outcome).Inc()
	}
}

// deliver checks the recipient's preferences and writes the inbox row.
func (d *Dispatcher) deliver(j job) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	prefs, err := store.GetNotificationPreferences(ctx, d.db, j.userID)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if !prefs.ShouldNotify(j.event) {
		return metrics.OutcomeSuppressed, nil
	}

	title, message := render(j.event, j.payload)
	n := &model.Notification{
		UserID:          j.userID,
		Type:            j.event,
		Title:           title,
		Message:         message,
		ResponseDetails: j.payload.Response,
	}
	if j.payload.ItemID > 0 {
		n.RelatedItemID = &j.payload.ItemID
	}
	if j.payload.ClaimID > 0 {
		n.RelatedClaimID = &j.payload.ClaimID
	}

	if _, err := store.CreateNotification(ctx, d.db, n); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("writing notification: %w", err)
	}
	return metrics.OutcomeDelivered, nil
}
