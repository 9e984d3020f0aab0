// Package syncbus is a process-local typed pub/sub that keeps
// independently-loaded list views consistent after a local mutation,
// without re-querying the backing store. Events are not persisted and are
// never replayed: a subscriber attached after publish sees nothing. The
// backing store remains the source of truth.
package syncbus

import "sync"

// Topic names a sync event.
type Topic string

const (
	TopicPostCreated Topic = "post.created"
	TopicPostDeleted Topic = "post.deleted"
	TopicPostAmen    Topic = "post.amen"
	TopicPostSaved   Topic = "post.saved"
	TopicPostUnsaved Topic = "post.unsaved"
)

// Event is a published sync event. Payload is one of the *Data structs
// matching the topic.
type Event struct {
	Topic   Topic
	Payload interface{}
}

// PostCreatedData carries the full created item so subscribers can
// insert without a fetch.
type PostCreatedData struct {
	PostID   string
	AuthorID string
	Text     string
}

// PostDeletedData identifies a removed item.
type PostDeletedData struct {
	PostID string
}

// PostAmenData carries an amen-count field update. Delta is +1 or -1.
type PostAmenData struct {
	PostID string
	UserID string
	Delta  int
}

// PostSavedData identifies a bookmarked item.
type PostSavedData struct {
	PostID string
	UserID string
}

// PostUnsavedData identifies an un-bookmarked item.
type PostUnsavedData struct {
	PostID string
	UserID string
}

const subscriberBuffer = 64

// Bus routes events to subscribers by topic. Publish never blocks; a
// subscriber that falls more than subscriberBuffer events behind loses the
// overflow, which only costs it a patch it could recover with a re-query.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic]map[*Subscriber]struct{}
}

// Subscriber receives events for its topics in publish order on C.
type Subscriber struct {
	C      <-chan Event
	ch     chan Event
	bus    *Bus
	topics []Topic
	once   sync.Once
}

// NewBus constructs a Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Topic]map[*Subscriber]struct{})}
}

// Subscribe registers a subscriber for the given topics.
func (b *Bus) Subscribe(topics ...Topic) *Subscriber {
	ch := make(chan Event, subscriberBuffer)
	s := &Subscriber{C: ch, ch: ch, bus: b, topics: topics}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		if b.subscribers[t] == nil {
			b.subscribers[t] = make(map[*Subscriber]struct{})
		}
		b.subscribers[t][s] = struct{}{}
	}
	return s
}

// Close detaches the subscriber and closes its channel. Safe to call once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		for _, t := range s.topics {
			if set := s.bus.subscribers[t]; set != nil {
				delete(set, s)
				if len(set) == 0 {
					delete(s.bus.subscribers, t)
				}
			}
		}
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subscribers[ev.Topic] {
		select {
		case s.ch <- ev:
		default:
		}
	}
}
