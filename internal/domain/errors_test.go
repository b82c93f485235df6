package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRemoteKind(t *testing.T) {
	rc := &RemoteCallError{Kind: KindRateLimited, Op: "play", Status: 429}

	kind, ok := RemoteKind(fmt.Errorf("dispatch: %w", rc))
	if !ok || kind != KindRateLimited {
		t.Errorf("RemoteKind = %v, %v", kind, ok)
	}

	if _, ok := RemoteKind(errors.New("plain")); ok {
		t.Error("plain errors carry no kind")
	}
	if _, ok := RemoteKind(nil); ok {
		t.Error("nil carries no kind")
	}
}

func TestIsDeviceUnavailable(t *testing.T) {
	unavailable := &RemoteCallError{Kind: KindDeviceUnavailable, Op: "pause", Status: 404}
	if !IsDeviceUnavailable(unavailable) {
		t.Error("404 should report as device unavailable")
	}
	if IsDeviceUnavailable(&RemoteCallError{Kind: KindAuth, Op: "pause", Status: 401}) {
		t.Error("auth failures are not device unavailability")
	}
}

func TestCaptureErrorUnwraps(t *testing.T) {
	sentinel := errors.New("no display")
	var ce *CaptureError
	err := fmt.Errorf("poll: %w", &CaptureError{Err: sentinel})

	if !errors.As(err, &ce) {
		t.Fatal("CaptureError not found in chain")
	}
	if !errors.Is(err, sentinel) {
		t.Error("wrapped cause lost")
	}
}
