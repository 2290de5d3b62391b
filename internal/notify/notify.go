// Package notify sends best-effort desktop notifications through the
// org.freedesktop.Notifications session service. Failures are reported
// but never fatal; the studio works fine without a notification daemon.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications.Notify"

	appName       = "tilevision"
	expireTimeout = int32(5000) // ms
)

type Notifier struct {
	conn *dbus.Conn
}

// New connects to the session bus. Returns an error when no session bus
// is reachable, for example when running headless.
func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{conn: conn}, nil
}

// Send posts a transient notification and returns its server-assigned id.
func (n *Notifier) Send(summary, body string) (uint32, error) {
	obj := n.conn.Object(notifyService, notifyPath)

	// Argument order per the freedesktop notification spec: app name,
	// replaces id, icon, summary, body, actions, hints, timeout.
	var id uint32
	err := obj.Call(notifyInterface, 0,
		appName,
		uint32(0),
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireTimeout,
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("notification call failed: %w", err)
	}
	return id, nil
}

func (n *Notifier) Close() error {
	return n.conn.Close()
}
