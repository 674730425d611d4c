// Package conversation sequences submissions through sampling, analysis and turn
// assembly, and owns the turn log of one session.
//
// The Controller is a small state machine:
//
//	Idle --Submit--> Submitting --success--> Idle
//	                            --failure--> Error
//
// Error accepts submissions exactly like Idle. Reset is valid from any state.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/zen-systems/serpcoach/pkg/analysis"
	"github.com/zen-systems/serpcoach/pkg/provider"
	"github.com/zen-systems/serpcoach/pkg/serp"
	"github.com/zen-systems/serpcoach/pkg/turn"
)

// State is the controller's state machine position.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateError      State = "error"
)

// FailureMessage is the user-facing text shown for every pipeline failure.
const FailureMessage = "Something went wrong while analyzing your text. Please try again."

var (
	// ErrRejected is returned when a submission is blank or one is already in flight.
	ErrRejected = errors.New("conversation: submission rejected")

	// ErrDiscarded is returned when a reset happened while the submission was in flight.
	ErrDiscarded = errors.New("conversation: submission discarded by reset")
)

// EngineFactory returns the analysis engine for a provider.
type EngineFactory func(cfg provider.Config, secret string) (analysis.Engine, error)

// Controller drives one conversation.
type Controller struct {
	mu sync.Mutex

	registry  *provider.Registry
	sampler   serp.Sampler
	newEngine EngineFactory
	secrets   func(id string) string

	active     string
	turns      []turn.Turn
	pending    string
	busy       bool
	lastError  string
	state      State
	generation uint64
	observers  []func(Snapshot)

	logger func(format string, args ...any)
	debug  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithSampler replaces the competitor sampler.
func WithSampler(s serp.Sampler) Option {
	return func(c *Controller) {
		c.sampler = s
	}
}

// WithEngineFactory replaces how engines are built for providers.
func WithEngineFactory(f EngineFactory) Option {
	return func(c *Controller) {
		c.newEngine = f
	}
}

// WithEngine serves every provider with e.
func WithEngine(e analysis.Engine) Option {
	return WithEngineFactory(func(provider.Config, string) (analysis.Engine, error) {
		return e, nil
	})
}

// WithClient builds remote engines on top of client.
func WithClient(client *provider.Client) Option {
	return WithEngineFactory(func(cfg provider.Config, secret string) (analysis.Engine, error) {
		return analysis.ForProvider(cfg, client, secret)
	})
}

// WithSecrets sets the lookup for a provider's credential. The value is never
// logged and never leaves the controller except in request headers.
func WithSecrets(lookup func(id string) string) Option {
	return func(c *Controller) {
		c.secrets = lookup
	}
}

// WithLogger sets a custom logger. A nil logger silences output.
func WithLogger(logger func(format string, args ...any)) Option {
	return func(c *Controller) {
		if logger == nil {
			logger = func(string, ...any) {}
		}
		c.logger = logger
	}
}

// WithDebug enables verbose logging.
func WithDebug(debug bool) Option {
	return func(c *Controller) {
		c.debug = debug
	}
}

// New creates a controller using activeID from registry.
func New(registry *provider.Registry, activeID string, opts ...Option) (*Controller, error) {
	if registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if _, err := registry.Get(activeID); err != nil {
		return nil, err
	}

	c := &Controller{
		registry: registry,
		sampler:  serp.NewStaticSampler(),
		secrets:  func(string) string { return "" },
		active:   strings.ToLower(strings.TrimSpace(activeID)),
		turns:    []turn.Turn{},
		state:    StateIdle,
		logger:   defaultLogger,
	}
	c.newEngine = func(cfg provider.Config, secret string) (analysis.Engine, error) {
		return analysis.ForProvider(cfg, nil, secret)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit runs text through the pipeline. It returns ErrRejected without changing
// state for blank text or while busy, ErrDiscarded if Reset ran meanwhile, the
// pipeline error on failure (the session moves to StateError), and nil on success.
func (c *Controller) Submit(ctx context.Context, text string) error {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" || c.busy {
		c.mu.Unlock()
		return ErrRejected
	}

	c.turns = append(c.turns, turn.WrapUserInput(text))
	c.pending = text
	c.lastError = ""
	c.busy = true
	c.state = StateSubmitting
	gen := c.generation
	active := c.active
	c.commitLocked()

	c.log("[conversation] submitted %d chars via %s", len(text), active)
	result, err := c.run(ctx, active, text)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log("[conversation] discarding result after reset")
		return ErrDiscarded
	}

	c.busy = false
	if err != nil {
		c.lastError = FailureMessage
		c.state = StateError
		c.commitLocked()
		c.logger("[conversation] submission failed: %v", err)
		return err
	}

	c.turns = append(c.turns, result)
	c.pending = ""
	c.state = StateIdle
	c.commitLocked()
	return nil
}

// run executes topic -> sample -> analyze -> assemble without holding the lock.
func (c *Controller) run(ctx context.Context, active, text string) (t turn.Turn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	cfg, err := c.registry.Get(active)
	if err != nil {
		return turn.Turn{}, err
	}

	topic, err := serp.Topic(text)
	if err != nil {
		return turn.Turn{}, err
	}
	competitors, err := c.sampler.Sample(topic)
	if err != nil {
		return turn.Turn{}, fmt.Errorf("sample competitors: %w", err)
	}
	if err := serp.ValidateSample(competitors); err != nil {
		return turn.Turn{}, err
	}

	engine, err := c.newEngine(cfg, c.secrets(active))
	if err != nil {
		return turn.Turn{}, fmt.Errorf("engine for %s: %w", active, err)
	}
	a, err := engine.Analyze(ctx, text, competitors)
	if err != nil {
		return turn.Turn{}, fmt.Errorf("analyze: %w", err)
	}
	if err := a.Validate(); err != nil {
		return turn.Turn{}, err
	}

	return turn.Assemble(a, competitors).WithProvider(active), nil
}

// Reset clears the session from any state. An in-flight submission is discarded
// when it resolves.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.turns = []turn.Turn{}
	c.pending = ""
	c.lastError = ""
	c.busy = false
	c.state = StateIdle
	c.generation++
	c.commitLocked()
}

// SetProvider switches the active provider for future submissions.
func (c *Controller) SetProvider(id string) error {
	cfg, err := c.registry.Get(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.active = strings.ToLower(strings.TrimSpace(id))
	c.commitLocked()
	c.log("[conversation] active provider is now %s", cfg.Name())
	return nil
}

// Subscribe registers fn to receive a snapshot after every transition.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// commitLocked takes a snapshot, releases the lock and notifies observers.
func (c *Controller) commitLocked() {
	snap := c.snapshotLocked()
	observers := append(([]func(Snapshot))(nil), c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snap.clone())
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Turns:          turn.CloneAll(c.turns),
		PendingInput:   c.pending,
		Busy:           c.busy,
		LastError:      c.lastError,
		State:          c.state,
		ActiveProvider: c.active,
	}
}

func (c *Controller) log(format string, args ...any) {
	if c.debug && c.logger != nil {
		c.logger(format, args...)
	}
}

func defaultLogger(format string, args ...any) {
	log.Printf(format, args...)
}
