// Package notify shows transient desktop notifications. Delivery is
// best-effort: a broken or missing notification daemon never blocks a
// playback action.
package notify

import (
	"fmt"
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Notifier displays a short user-visible message.
type Notifier interface {
	Notify(summary, body string)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}

const (
	notifyName = "org.freedesktop.Notifications"
	notifyPath = "/org/freedesktop/Notifications"

	expireMillis = 2000
)

// DBus sends org.freedesktop.Notifications messages on the session bus.
type DBus struct {
	conn *dbus.Conn

	mu     sync.Mutex
	lastID uint32
}

// NewDBus connects to the session bus.
func NewDBus() (*DBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	return &DBus{conn: conn}, nil
}

// Notify displays a notification, replacing the previous one so rapid
// volume changes update a single popup instead of stacking. Failures
// are logged and swallowed.
func (n *DBus) Notify(summary, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Notify(app, replacesID, icon, summary, body, actions, hints, timeout)
	obj := n.conn.Object(notifyName, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyName+".Notify", 0,
		"playkeys", n.lastID, "", summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(expireMillis))
	if call.Err != nil {
		log.Printf("[notify] %v", call.Err)
		return
	}
	if err := call.Store(&n.lastID); err != nil {
		log.Printf("[notify] %v", err)
	}
}
