package views

import (
	"sync"
	"time"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
)

// NoticeKind distinguishes confirmations from failures.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient message shown to the user once.
type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

// Notices is a queue of transient messages. Views push; renderers drain.
type Notices struct {
	mu    sync.Mutex
	items []Notice
	now   func() time.Time
}

// NewNotices creates an empty queue.
func NewNotices() *Notices {
	return &Notices{now: time.Now}
}

// Success queues a confirmation.
func (n *Notices) Success(text string) {
	n.push(Notice{Kind: NoticeSuccess, Text: text})
}

// Error queues the user-facing text of err.
func (n *Notices) Error(err error) {
	logger.Get().Debugw("error notice", "error", err)
	n.push(Notice{Kind: NoticeError, Text: apperrors.UserMessage(err)})
}

func (n *Notices) push(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	notice.At = n.now()
	n.items = append(n.items, notice)
}

// Drain returns the queued notices and empties the queue.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}
