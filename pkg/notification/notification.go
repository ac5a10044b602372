package notification

import (
	n "github.com/0xAX/notificator"
	log "github.com/sirupsen/logrus"
)

// AppName Shown as the sender of desktop notifications
const AppName = "PrintAgent"

// Notifier Delivers a short message to whoever operates the service
type Notifier interface {
	Notify(msg string)
}

// Desktop Sends notifications through the desktop notification system
type Desktop struct {
	note *n.Notificator
}

// NewDesktop Create a desktop notifier
func NewDesktop(icon string) *Desktop {
	return &Desktop{
		note: n.New(n.Options{
			DefaultIcon: icon,
			AppName:     AppName,
		}),
	}
}

// Notify Push msg to the desktop. Failures are only logged.
func (d *Desktop) Notify(msg string) {
	log.Debugf("Sending message %s to notification system", msg)
	if err := d.note.Push(AppName, msg, "", n.UR_NORMAL); err != nil {
		log.Warnf("Unable to send notification: %s", err)
	}
}

// Nop Discards every notification
type Nop struct{}

// Notify does nothing
func (Nop) Notify(string) {}

// New Pick a notifier
func New(enabled bool) Notifier {
	if enabled {
		return NewDesktop("")
	}
	return Nop{}
}
