package out

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	pacingout "yomite/internal/modules/pacing/port/out"
)

// FrameMsg is delivered to the Bubble Tea update loop when a frame is due.
type FrameMsg struct {
	Handle pacingout.FrameHandle
	At     time.Time
}

// TeaScheduler turns frame requests into tea.Tick commands. Requests are
// queued until the owning model collects them with Cmd, and callbacks run
// on the update goroutine through Fire.
type TeaScheduler struct {
	interval time.Duration
	next     pacingout.FrameHandle
	pending  map[pacingout.FrameHandle]pacingout.FrameFunc
	queued   []pacingout.FrameHandle
}

func NewTeaScheduler(interval time.Duration) *TeaScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TeaScheduler{interval: interval, pending: map[pacingout.FrameHandle]pacingout.FrameFunc{}}
}

func (s *TeaScheduler) RequestFrame(fn pacingout.FrameFunc) pacingout.FrameHandle {
	s.next++
	s.pending[s.next] = fn
	s.queued = append(s.queued, s.next)
	return s.next
}

func (s *TeaScheduler) CancelFrame(handle pacingout.FrameHandle) {
	delete(s.pending, handle)
}

// Cmd drains queued requests into tick commands. It returns nil when nothing
// is queued.
func (s *TeaScheduler) Cmd() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.queued))
	for _, handle := range s.queued {
		if _, ok := s.pending[handle]; !ok {
			continue
		}
		h := handle
		cmds = append(cmds, tea.Tick(s.interval, func(at time.Time) tea.Msg {
			return FrameMsg{Handle: h, At: at}
		}))
	}
	s.queued = s.queued[:0]
	return tea.Batch(cmds...)
}

// Fire runs the frame named by msg if it is still pending.
func (s *TeaScheduler) Fire(msg FrameMsg) bool {
	fn, ok := s.pending[msg.Handle]
	if !ok {
		return false
	}
	delete(s.pending, msg.Handle)
	fn(msg.At)
	return true
}

func (s *TeaScheduler) Pending() int { return len(s.pending) }
