package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var weekdays = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// ClockTickMsg refreshes the on-screen clock.
type ClockTickMsg struct{ At time.Time }

// FormatClock renders t as MM/dd(曜) hh:mm:ss with the weekday in Japanese.
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%02d/%02d(%s) %02d:%02d:%02d",
		int(t.Month()), t.Day(), weekdays[t.Weekday()], t.Hour(), t.Minute(), t.Second())
}

// ClockTick schedules the next refresh on the following wall-clock second.
func ClockTick() tea.Cmd {
	return tea.Every(time.Second, func(at time.Time) tea.Msg {
		return ClockTickMsg{At: at}
	})
}
