package editor

import (
	"errors"
	"sync"
	"sync/atomic"

	"media-editor/internal/engine"
)

// fakeEngine is a scriptable engine. Behaviour is driven by the number of
// progress polls it has answered.
type fakeEngine struct {
	listener engine.Listener

	startErr error

	// After completeAfter polls the engine reports completion, after failAfter
	// polls it reports failure. Zero disables either.
	completeAfter int
	failAfter     int
	failErr       error
	result        engine.ExportResult

	// fallback is reported right after Start when set.
	fallback *[2]engine.TransformationRequest

	state   engine.ProgressState
	percent int

	mu     sync.Mutex
	media  engine.EditedMedia
	output string

	polls     atomic.Int32
	starts    atomic.Int32
	cancels   atomic.Int32
	releases  atomic.Int32
	announced atomic.Bool
}

func (f *fakeEngine) Start(media engine.EditedMedia, outputPath string) error {
	f.starts.Add(1)
	f.mu.Lock()
	f.media = media
	f.output = outputPath
	f.mu.Unlock()

	if f.startErr != nil {
		return f.startErr
	}
	if f.fallback != nil {
		go f.listener.OnFallbackApplied(f.fallback[0], f.fallback[1])
	}
	return nil
}

func (f *fakeEngine) Progress() (engine.ProgressState, int) {
	n := int(f.polls.Add(1))

	switch {
	case f.completeAfter > 0 && n >= f.completeAfter:
		if f.announced.CompareAndSwap(false, true) {
			go f.listener.OnCompleted(f.result)
		}
	case f.failAfter > 0 && n >= f.failAfter:
		if f.announced.CompareAndSwap(false, true) {
			go f.listener.OnError(f.failErr)
		}
	}
	return f.state, f.percent
}

func (f *fakeEngine) Cancel() {
	f.cancels.Add(1)
}

func (f *fakeEngine) Release() {
	f.releases.Add(1)
}

type fakeFactory struct {
	newErr error
	build  func() *fakeEngine

	mu      sync.Mutex
	configs []engine.Config
	engines []*fakeEngine
}

func (f *fakeFactory) NewEngine(cfg engine.Config, listener engine.Listener) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.configs = append(f.configs, cfg)
	if f.newErr != nil {
		return nil, f.newErr
	}

	eng := &fakeEngine{}
	if f.build != nil {
		eng = f.build()
	}
	eng.listener = listener
	f.engines = append(f.engines, eng)
	return eng, nil
}

func (f *fakeFactory) engine(i int) *fakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.engines) {
		return nil
	}
	return f.engines[i]
}

func (f *fakeFactory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.configs)
}

var errBoom = errors.New("boom")
