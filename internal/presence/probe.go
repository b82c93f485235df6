// Package presence answers one question: is a local Spotify client
// running? On Linux the session bus knows, because a running client owns
// the well-known MPRIS name. The answer turns an opaque
// "device unavailable" API error into an actionable log line.
package presence

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const mprisPrefix = "org.mpris.MediaPlayer2."

// DBusClient is the seam over the session bus connection.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/ThePyrotechnic/overwatch-spotify/internal/presence DBusClient
type DBusClient interface {
	// Close closes the bus connection.
	Close() error

	// ListNames returns all names currently on the bus.
	ListNames() ([]string, error)
}

// Probe checks the session bus for a running Spotify client. The
// connection is opened lazily on first use and re-opened after failures.
type Probe struct {
	logger *zap.Logger

	mu   sync.Mutex
	conn DBusClient
}

// New creates a probe. On platforms without a session bus every check
// fails with domain.ErrUnsupported.
func New(logger *zap.Logger) *Probe {
	return &Probe{logger: logger}
}

// LocalClientRunning reports whether any MPRIS player name owned by
// Spotify is on the session bus.
func (p *Probe) LocalClientRunning(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, err := connectSessionBus()
		if err != nil {
			return false, err
		}
		p.conn = conn
	}

	names, err := p.conn.ListNames()
	if err != nil {
		// Drop the connection so the next check reconnects.
		if cerr := p.conn.Close(); cerr != nil {
			p.logger.Debug("Closing stale bus connection failed", zap.Error(cerr))
		}
		p.conn = nil
		return false, err
	}

	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) && strings.Contains(name, "spotify") {
			p.logger.Debug("Local client detected on session bus", zap.String("name", name))
			return true, nil
		}
	}
	return false, nil
}
