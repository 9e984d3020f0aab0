package feed

import "sync"

// OpState is the lifecycle of an optimistic mutation.
type OpState int

const (
	// OpPending means the local change is applied but the backing write
	// has not finished.
	OpPending OpState = iota
	// OpCommitted means the backing write succeeded.
	OpCommitted
	// OpRolledBack means the backing write failed and the local change
	// was reverted.
	OpRolledBack
)

func (s OpState) String() string {
	switch s {
	case OpPending:
		return "pending"
	case OpCommitted:
		return "committed"
	case OpRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Op tracks one optimistic mutation from pending to its outcome. The
// pending state is observable so callers can reflect in-flight writes.
type Op struct {
	mu    sync.Mutex
	state OpState
	err   error
	done  chan struct{}
}

func newOp() *Op {
	return &Op{state: OpPending, done: make(chan struct{})}
}

func newCommittedOp() *Op {
	op := newOp()
	op.commit()
	return op
}

// State returns the current lifecycle state.
func (o *Op) State() OpState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the backing-write error after a rollback, nil otherwise.
func (o *Op) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Done is closed once the operation leaves the pending state.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation resolves and returns its error.
func (o *Op) Wait() error {
	<-o.done
	return o.Err()
}

func (o *Op) commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != OpPending {
		return
	}
	o.state = OpCommitted
	close(o.done)
}

func (o *Op) rollback(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != OpPending {
		return
	}
	o.state = OpRolledBack
	o.err = err
	close(o.done)
}
