package notification

import "testing"

func TestNewDisabled(t *testing.T) {
	if _, ok := New(false).(Nop); !ok {
		t.Fatal("disabled notifications should use Nop")
	}
	Nop{}.Notify("ignored")
}

func TestNewEnabled(t *testing.T) {
	d, ok := New(true).(*Desktop)
	if !ok || d.note == nil {
		t.Fatal("enabled notifications should use the desktop notifier")
	}
}
