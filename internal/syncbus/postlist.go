package syncbus

import "sync"

// PostItem is the minimal shape a list view keeps per post.
type PostItem struct {
	PostID     string
	AuthorID   string
	Text       string
	AmensCount int
	Saved      bool
}

// PostList is the subscriber-side patch target: an ordered local list a
// view owns, patched in place from bus events instead of re-fetching.
// Patches are insert-if-absent, remove-by-id and field updates; an event
// for an identifier the list does not contain is a no-op.
type PostList struct {
	mu    sync.Mutex
	items []PostItem
}

// NewPostList constructs an empty list.
func NewPostList() *PostList {
	return &PostList{}
}

// Seed replaces the list contents, as after an initial query.
func (l *PostList) Seed(items []PostItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]PostItem(nil), items...)
}

// Items returns a copy of the current list.
func (l *PostList) Items() []PostItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PostItem(nil), l.items...)
}

// Contains reports whether the list holds the post.
func (l *PostList) Contains(postID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(postID) >= 0
}

// Apply patches the list from a single bus event.
func (l *PostList) Apply(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch data := ev.Payload.(type) {
	case PostCreatedData:
		if l.indexOf(data.PostID) >= 0 {
			return
		}
		l.items = append([]PostItem{{PostID: data.PostID, AuthorID: data.AuthorID, Text: data.Text}}, l.items...)
	case PostDeletedData:
		if i := l.indexOf(data.PostID); i >= 0 {
			l.items = append(l.items[:i], l.items[i+1:]...)
		}
	case PostAmenData:
		if i := l.indexOf(data.PostID); i >= 0 {
			l.items[i].AmensCount += data.Delta
			if l.items[i].AmensCount < 0 {
				l.items[i].AmensCount = 0
			}
		}
	case PostSavedData:
		if i := l.indexOf(data.PostID); i >= 0 {
			l.items[i].Saved = true
		}
	case PostUnsavedData:
		if i := l.indexOf(data.PostID); i >= 0 {
			l.items[i].Saved = false
		}
	}
}

// Run consumes a subscriber's channel until it closes, applying each event.
// Intended to run on the goroutine that owns the view's state.
func (l *PostList) Run(s *Subscriber) {
	for ev := range s.C {
		l.Apply(ev)
	}
}

func (l *PostList) indexOf(postID string) int {
	for i := range l.items {
		if l.items[i].PostID == postID {
			return i
		}
	}
	return -1
}
