// Package feed maintains a live, recipient-scoped view of notification
// records for one session: a standing subscription delivering full
// snapshots, a derived unread counter, and optimistic mark-read mutations
// with rollback. A Feed is constructed per session and passed to its
// consumers; there is no shared global instance.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/models"
)

// DefaultLimit caps the subscribed record set.
const DefaultLimit = 100

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Store is the backing query/update surface the feed converges against.
type Store interface {
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID string, id uint) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

// Signaler delivers per-recipient change signals; each signal means the
// backing record set may have changed and a re-query is due.
type Signaler interface {
	Subscribe(recipientID string) (<-chan struct{}, func())
}

// Snapshot is the feed state handed to change listeners.
type Snapshot struct {
	Records     []models.Notification `json:"records"`
	UnreadCount int                   `json:"unread_count"`
}

// Feed mirrors one recipient's notification records.
type Feed struct {
	store       Store
	signals     Signaler
	recipientID string
	limit       int
	log         *logrus.Logger

	mu       sync.Mutex
	records  []models.Notification
	unread   int
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	onChange func(Snapshot)
}

// New constructs a feed for one recipient.
func New(store Store, signals Signaler, recipientID string, log *logrus.Logger) *Feed {
	return &Feed{
		store:       store,
		signals:     signals,
		recipientID: recipientID,
		limit:       DefaultLimit,
		log:         log,
	}
}

// OnChange sets the listener invoked with a snapshot after every local
// state change, from the stream or from an optimistic mutation. Set it
// before Start; the listener runs on the goroutine that made the change.
func (f *Feed) OnChange(fn func(Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Start opens the standing subscription. Idempotent: calling while already
// subscribed does not create a second stream.
func (f *Feed) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	signals, unsubscribe := f.signals.Subscribe(f.recipientID)
	go func() {
		defer close(done)
		defer unsubscribe()
		f.run(runCtx, signals)
	}()
}

// Stop tears the subscription down and waits for the stream goroutine to
// exit. Safe to call when not subscribed, and safe to call twice.
func (f *Feed) Stop() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	f.started = false
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	cancel()
	<-done
}

// run refreshes on every signal, retrying failed queries with capped
// exponential backoff instead of surfacing them as fatal.
func (f *Feed) run(ctx context.Context, signals <-chan struct{}) {
	backoff := initialBackoff
	for {
		if err := f.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.WithField("recipient_id", f.recipientID).WithError(err).Warn("feed: refresh failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			return
		case <-signals:
		}
	}
}

// refresh replaces local state with the authoritative result set. Last
// write wins: an optimistic change racing a delivery converges on the
// next snapshot that reflects the committed write.
func (f *Feed) refresh(ctx context.Context) error {
	records, err := f.store.ListByRecipient(ctx, f.recipientID, f.limit)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.records = records
	f.recomputeUnreadLocked()
	fn, snap := f.onChange, f.snapshotLocked()
	f.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return nil
}

// Records returns a copy of the current record set.
func (f *Feed) Records() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.records...)
}

// UnreadCount returns the derived count of unread records.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// Snapshot returns the current records and unread count together.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// MarkRead marks one record read: the local record flips immediately and
// the backing write runs in the background. On write failure the local
// change is rolled back and the error surfaces on the returned Op.
func (f *Feed) MarkRead(ctx context.Context, id uint) *Op {
	f.mu.Lock()
	idx := -1
	for i := range f.records {
		if f.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || f.records[idx].IsRead {
		f.mu.Unlock()
		return newCommittedOp()
	}
	f.records[idx].IsRead = true
	f.recomputeUnreadLocked()
	fn, snap := f.onChange, f.snapshotLocked()
	f.mu.Unlock()

	if fn != nil {
		fn(snap)
	}

	op := newOp()
	go func() {
		if err := f.store.MarkRead(ctx, f.recipientID, id); err != nil {
			f.rollbackRead(err, op, id)
			return
		}
		op.commit()
	}()
	return op
}

// MarkAllRead marks every currently-unread record read, leaving the
// unread count at zero immediately, before the backing write confirms.
func (f *Feed) MarkAllRead(ctx context.Context) *Op {
	f.mu.Lock()
	var affected []uint
	for i := range f.records {
		if !f.records[i].IsRead {
			f.records[i].IsRead = true
			affected = append(affected, f.records[i].ID)
		}
	}
	if len(affected) == 0 {
		f.mu.Unlock()
		return newCommittedOp()
	}
	f.recomputeUnreadLocked()
	fn, snap := f.onChange, f.snapshotLocked()
	f.mu.Unlock()

	if fn != nil {
		fn(snap)
	}

	op := newOp()
	go func() {
		if err := f.store.MarkAllRead(ctx, f.recipientID); err != nil {
			f.rollbackRead(err, op, affected...)
			return
		}
		op.commit()
	}()
	return op
}

func (f *Feed) rollbackRead(cause error, op *Op, ids ...uint) {
	f.log.WithField("recipient_id", f.recipientID).WithError(cause).Warn("feed: mark-read write failed, rolling back")

	rollback := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		rollback[id] = struct{}{}
	}

	f.mu.Lock()
	for i := range f.records {
		if _, ok := rollback[f.records[i].ID]; ok {
			f.records[i].IsRead = false
		}
	}
	f.recomputeUnreadLocked()
	fn, snap := f.onChange, f.snapshotLocked()
	f.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	op.rollback(cause)
}

func (f *Feed) recomputeUnreadLocked() {
	unread := 0
	for i := range f.records {
		if !f.records[i].IsRead {
			unread++
		}
	}
	f.unread = unread
}

func (f *Feed) snapshotLocked() Snapshot {
	return Snapshot{
		Records:     append([]models.Notification(nil), f.records...),
		UnreadCount: f.unread,
	}
}
