package domain

import (
	"errors"
	"fmt"
)

// ErrVolumeOutOfRange is returned for volume levels outside [0,100],
// before any network call is made.
var ErrVolumeOutOfRange = errors.New("volume level must be between 0 and 100")

// ErrUnsupported is returned by platform-specific components on platforms
// they do not support.
var ErrUnsupported = errors.New("not supported on this platform")

// CaptureError wraps a failed screen read. The poll that hit it is skipped:
// the confirmed state is unchanged and the debounce counter is not reset.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return "screen capture failed: " + e.Err.Error()
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies a failed remote call.
type ErrorKind int

const (
	// KindNetwork covers transport failures and unexpected responses.
	KindNetwork ErrorKind = iota

	// KindAuth means the access token was rejected. The client retries
	// once after a refresh before surfacing this.
	KindAuth

	// KindRateLimited means the service asked us to back off.
	KindRateLimited

	// KindDeviceUnavailable means no active playback device was found.
	// Reported distinctly: it usually just means the client is not open.
	KindDeviceUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindDeviceUnavailable:
		return "device_unavailable"
	default:
		return "network"
	}
}

// RemoteCallError is a failed call to the remote playback service.
type RemoteCallError struct {
	Kind   ErrorKind
	Op     string // "play", "pause", "set_volume", "refresh"
	Status int    // HTTP status, 0 for transport errors
	Err    error  // underlying cause, may be nil
}

func (e *RemoteCallError) Error() string {
	msg := fmt.Sprintf("spotify %s failed (%s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(", status %d", e.Status)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// RemoteKind extracts the ErrorKind from err, if it is a RemoteCallError.
func RemoteKind(err error) (ErrorKind, bool) {
	var rc *RemoteCallError
	if errors.As(err, &rc) {
		return rc.Kind, true
	}
	return 0, false
}

// IsDeviceUnavailable reports whether err is a device-unavailable remote failure.
func IsDeviceUnavailable(err error) bool {
	k, ok := RemoteKind(err)
	return ok && k == KindDeviceUnavailable
}
