package state

import (
	"sync"
	"time"

	"sge-console/core/rbac"
	"sge-console/core/view"
)

// Notices stay visible this long before auto-clearing.
const DefaultNoticeTTL = 5 * time.Second

// Store serializes reductions and fans snapshots out to subscribers. All
// reads go through Snapshot; the contained slices must be treated as
// read-only.
type Store struct {
	mu        sync.Mutex
	state     State
	subs      []func(State)
	noticeTTL time.Duration
	noticeSeq uint64
	after     func(time.Duration, func()) // injectable for tests
}

func NewStore() *Store {
	return &Store{
		state:     Initial(),
		noticeTTL: DefaultNoticeTTL,
		after:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// SetNoticeTTL overrides the auto-clear delay; tests shorten it.
func (st *Store) SetNoticeTTL(d time.Duration) {
	st.mu.Lock()
	st.noticeTTL = d
	st.mu.Unlock()
}

func (st *Store) Subscribe(fn func(State)) {
	st.mu.Lock()
	st.subs = append(st.subs, fn)
	st.mu.Unlock()
}

func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

func (st *Store) Dispatch(a Action) {
	st.mu.Lock()
	st.state = Reduce(st.state, a)
	snap := st.state
	subs := st.subs
	st.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (st *Store) Identity() *rbac.Identity {
	return st.Snapshot().Identity
}

func (st *Store) ActiveView() view.View {
	return st.Snapshot().ActiveView
}

// Navigate requests a view change. The reducer re-validates against the
// allow-list, so a forbidden request is a silent no-op.
func (st *Store) Navigate(target view.View) {
	st.Dispatch(Navigated{Target: target})
}

// NavigateEdit opens the edit view for a cached event.
func (st *Store) NavigateEdit(eventID string) {
	st.Dispatch(Navigated{Target: view.EditEvent, EventID: eventID})
}

func (st *Store) PostError(text string) {
	st.postNotice(NoticeError, text)
}

func (st *Store) PostSuccess(text string) {
	st.postNotice(NoticeSuccess, text)
}

func (st *Store) postNotice(kind NoticeKind, text string) {
	if text == "" {
		return
	}
	st.mu.Lock()
	st.noticeSeq++
	seq := st.noticeSeq
	ttl := st.noticeTTL
	after := st.after
	st.mu.Unlock()
	st.Dispatch(NoticePosted{Kind: kind, Text: text, Seq: seq})
	after(ttl, func() {
		st.Dispatch(NoticeCleared{Seq: seq})
	})
}
