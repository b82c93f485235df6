//go:build linux
// +build linux

package presence

import (
	"github.com/godbus/dbus/v5"
)

// stdDBusClient is the real session-bus client.
type stdDBusClient struct {
	conn *dbus.Conn
}

func connectSessionBus() (DBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &stdDBusClient{conn: conn}, nil
}

func (c *stdDBusClient) Close() error {
	return c.conn.Close()
}

func (c *stdDBusClient) ListNames() ([]string, error) {
	var names []string
	err := c.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}
