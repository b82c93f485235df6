//go:build !linux
// +build !linux

package presence

import (
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// connectSessionBus fails on platforms without a session bus; callers
// treat domain.ErrUnsupported as "no hint available".
func connectSessionBus() (DBusClient, error) {
	return nil, domain.ErrUnsupported
}
