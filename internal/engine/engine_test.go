package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

type fakeSampler struct {
	calls   int
	failOn  map[int]error // 1-based call number -> error
	samples map[domain.Coordinate]domain.ColorSample
}

func (f *fakeSampler) Sample(coords []domain.Coordinate) (map[domain.Coordinate]domain.ColorSample, error) {
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return nil, err
	}
	return f.samples, nil
}

// fakeClassifier replays a fixed poll sequence.
type fakeClassifier struct {
	states []domain.GameState
	i      int
}

func (f *fakeClassifier) Classify(map[domain.Coordinate]domain.ColorSample) domain.GameState {
	if f.i >= len(f.states) {
		return domain.StateUnknown
	}
	s := f.states[f.i]
	f.i++
	return s
}

type fakeDispatcher struct {
	dispatched []domain.Transition
	ran        [][]domain.Action
}

func (f *fakeDispatcher) Dispatch(_ context.Context, t domain.Transition) {
	f.dispatched = append(f.dispatched, t)
}

func (f *fakeDispatcher) RunActions(_ context.Context, actions []domain.Action) {
	f.ran = append(f.ran, actions)
}

func testConfig() *config.Config {
	return &config.Config{
		PollInterval:     10 * time.Millisecond,
		ConfirmThreshold: 2,
		StartupState:     "menu",
		Signatures: []domain.StateSignature{
			{
				State:  "match",
				Kind:   domain.MatchColor,
				Pixels: []domain.Coordinate{{X: 1, Y: 1}},
			},
		},
	}
}

func newTestEngine(cfg *config.Config, s domain.Sampler, c domain.Classifier, d domain.Dispatcher) *Engine {
	return New(zap.NewNop(), cfg, s, c, d)
}

func TestEngine_ConfirmedTransitionDispatches(t *testing.T) {
	disp := &fakeDispatcher{}
	e := newTestEngine(testConfig(),
		&fakeSampler{},
		&fakeClassifier{states: []domain.GameState{"match", "match", "match"}},
		disp)

	for i := 0; i < 3; i++ {
		e.pollOnce(context.Background())
	}

	want := domain.Transition{From: "menu", To: "match"}
	if len(disp.dispatched) != 1 || disp.dispatched[0] != want {
		t.Fatalf("dispatched = %v, want exactly [%v]", disp.dispatched, want)
	}
}

func TestEngine_CaptureErrorSkipsPollWithoutReset(t *testing.T) {
	// Poll 2 fails to capture. The streak from poll 1 must survive, so
	// poll 3 still confirms with threshold 2.
	disp := &fakeDispatcher{}
	smp := &fakeSampler{failOn: map[int]error{
		2: &domain.CaptureError{Err: errors.New("no display")},
	}}
	e := newTestEngine(testConfig(),
		smp,
		&fakeClassifier{states: []domain.GameState{"match", "match"}},
		disp)

	for i := 0; i < 3; i++ {
		e.pollOnce(context.Background())
	}

	if len(disp.dispatched) != 1 {
		t.Fatalf("dispatched = %v, want one transition", disp.dispatched)
	}
	if got := e.machine.Confirmed(); got != "match" {
		t.Fatalf("confirmed = %q, want match", got)
	}
}

func TestEngine_UnmatchedPollsDispatchNothing(t *testing.T) {
	disp := &fakeDispatcher{}
	e := newTestEngine(testConfig(),
		&fakeSampler{},
		&fakeClassifier{},
		disp)

	for i := 0; i < 5; i++ {
		e.pollOnce(context.Background())
	}

	if len(disp.dispatched) != 0 {
		t.Fatalf("unknown-only polls dispatched %v", disp.dispatched)
	}
}

func TestEngine_StopRunsExitActions(t *testing.T) {
	cfg := testConfig()
	cfg.OnExit = []domain.Action{domain.SetVolumeAction{Level: 50}}

	disp := &fakeDispatcher{}
	e := newTestEngine(cfg, &fakeSampler{}, &fakeClassifier{}, disp)

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(disp.ran) != 1 || len(disp.ran[0]) != 1 {
		t.Fatalf("exit actions ran = %v, want one list with one action", disp.ran)
	}
	if disp.ran[0][0].String() != "set_volume:50" {
		t.Fatalf("exit action = %s, want set_volume:50", disp.ran[0][0])
	}
}

func TestEngine_StartStopLifecycle(t *testing.T) {
	e := newTestEngine(testConfig(), &fakeSampler{}, &fakeClassifier{}, &fakeDispatcher{})

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Let the loop tick at least once.
	time.Sleep(30 * time.Millisecond)

	if err := e.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case <-e.done:
	default:
		t.Fatal("loop goroutine still running after Stop")
	}
}
