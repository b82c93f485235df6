package dispatch

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain/mocks"
)

type fakePresence struct {
	running bool
	err     error
	calls   int
}

func (f *fakePresence) LocalClientRunning(context.Context) (bool, error) {
	f.calls++
	return f.running, f.err
}

func newDispatcher(t *testing.T, mapping domain.ActionMapping, pres domain.PresenceChecker) (*Dispatcher, *mocks.MockController) {
	t.Helper()
	ctrl := gomock.NewController(t)
	controller := mocks.NewMockController(ctrl)
	if pres == nil {
		pres = &fakePresence{err: domain.ErrUnsupported}
	}
	return New(zap.NewNop(), mapping, controller, pres), controller
}

func stateMapping(state domain.GameState, actions ...domain.Action) domain.ActionMapping {
	return domain.ActionMapping{
		ByState:      map[domain.GameState][]domain.Action{state: actions},
		ByTransition: map[domain.Transition][]domain.Action{},
	}
}

func TestDispatch_RunsActionsInOrder(t *testing.T) {
	mapping := stateMapping("dead", domain.PauseAction{}, domain.SetVolumeAction{Level: 30})
	d, controller := newDispatcher(t, mapping, nil)

	gomock.InOrder(
		controller.EXPECT().Pause(gomock.Any()).Return(nil),
		controller.EXPECT().SetVolume(gomock.Any(), 30).Return(nil),
	)

	d.Dispatch(context.Background(), domain.Transition{From: "match", To: "dead"})
}

// A failed action must not block the rest of the list.
func TestDispatch_ContinuesPastFailures(t *testing.T) {
	mapping := stateMapping("dead", domain.PauseAction{}, domain.SetVolumeAction{Level: 30})
	d, controller := newDispatcher(t, mapping, nil)

	gomock.InOrder(
		controller.EXPECT().Pause(gomock.Any()).
			Return(&domain.RemoteCallError{Kind: domain.KindNetwork, Op: "pause"}),
		controller.EXPECT().SetVolume(gomock.Any(), 30).Return(nil),
	)

	d.Dispatch(context.Background(), domain.Transition{From: "match", To: "dead"})
}

func TestDispatch_UnmappedTransitionIsNoOp(t *testing.T) {
	mapping := stateMapping("dead", domain.PauseAction{})
	d, _ := newDispatcher(t, mapping, nil)

	// No EXPECT calls: any controller call would fail the test.
	d.Dispatch(context.Background(), domain.Transition{From: "menu", To: "match"})
}

func TestDispatch_TransitionMappingWins(t *testing.T) {
	mapping := domain.ActionMapping{
		ByState: map[domain.GameState][]domain.Action{
			"match": {domain.PlayAction{}},
		},
		ByTransition: map[domain.Transition][]domain.Action{
			{From: "dead", To: "match"}: {domain.SetVolumeAction{Level: 60}},
		},
	}
	d, controller := newDispatcher(t, mapping, nil)

	// The pair-specific mapping replaces the state mapping entirely.
	controller.EXPECT().SetVolume(gomock.Any(), 60).Return(nil)

	d.Dispatch(context.Background(), domain.Transition{From: "dead", To: "match"})
}

func TestDispatch_DeviceUnavailableConsultsPresence(t *testing.T) {
	tests := []struct {
		name     string
		presence *fakePresence
	}{
		{"client running", &fakePresence{running: true}},
		{"client not running", &fakePresence{running: false}},
		{"probe unsupported", &fakePresence{err: domain.ErrUnsupported}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := stateMapping("match", domain.PlayAction{})
			d, controller := newDispatcher(t, mapping, tt.presence)

			controller.EXPECT().Play(gomock.Any()).
				Return(&domain.RemoteCallError{Kind: domain.KindDeviceUnavailable, Op: "play", Status: 404})

			d.Dispatch(context.Background(), domain.Transition{From: "menu", To: "match"})

			if tt.presence.calls != 1 {
				t.Fatalf("presence checked %d times, want 1", tt.presence.calls)
			}
		})
	}
}

func TestDispatch_OtherFailuresSkipPresence(t *testing.T) {
	pres := &fakePresence{running: true}
	mapping := stateMapping("match", domain.PlayAction{})
	d, controller := newDispatcher(t, mapping, pres)

	controller.EXPECT().Play(gomock.Any()).
		Return(&domain.RemoteCallError{Kind: domain.KindRateLimited, Op: "play", Status: 429})

	d.Dispatch(context.Background(), domain.Transition{From: "menu", To: "match"})

	if pres.calls != 0 {
		t.Fatalf("presence checked %d times, want 0", pres.calls)
	}
}

func TestRunActions_EmptyList(t *testing.T) {
	d, _ := newDispatcher(t, stateMapping("match"), nil)
	d.RunActions(context.Background(), nil)
}
