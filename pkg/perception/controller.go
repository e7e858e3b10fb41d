// Package perception owns the scan/listen/query state machine at the
// center of the client: it throttles frame analysis cycles, enforces
// the single-flight rule on remote calls, freezes on a STOP verdict
// until reset, and maps classification results to audio and speech.
package perception

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pathlight/go-pathlight/pkg/capture"
	"github.com/pathlight/go-pathlight/pkg/gateway"
	"github.com/pathlight/go-pathlight/pkg/voice"
)

// Errors returned by the controller's state transitions.
var (
	ErrNotListening     = errors.New("perception: not listening")
	ErrAlreadyListening = errors.New("perception: already listening")
	ErrBusy             = errors.New("perception: query in progress")
)

const (
	// DefaultScanInterval is the pause between completed analysis
	// cycles. It bounds remote-call rate and leaves room for speech to
	// finish before the next instruction.
	DefaultScanInterval = 4 * time.Second

	// DefaultSafeSpeechEvery throttles spoken feedback on consecutive
	// SAFE verdicts: every Nth SAFE cycle speaks, the rest only ping.
	DefaultSafeSpeechEvery = 3

	// maxCombinedWords is the spoken-length cutoff: summary plus
	// command at or under this speaks both, anything longer speaks the
	// command alone.
	maxCombinedWords = 10
)

// Analyzer is the slice of the remote gateway the controller uses.
// Both operations are total; they degrade instead of returning errors.
type Analyzer interface {
	AnalyzeFrame(ctx context.Context, image []byte, language, prompt string) *gateway.ClassificationResult
	TranscribeAudio(ctx context.Context, audio []byte, mimeType, language string) string
}

// Cues is the audio feedback surface.
type Cues interface {
	SonarPing(pan float64) error
	CautionPulse(pan float64) error
	Alarm(pan float64) error
	ErrorTone() error
}

// Talker speaks text through the high-quality voice path. Failure is
// handled inside (audibly); Say never blocks the caller on an error.
type Talker interface {
	Say(ctx context.Context, text string)
}

// Snapshot is a consistent read of the controller for observers.
type Snapshot struct {
	State          State                         `json:"state"`
	EmergencyLatch bool                          `json:"emergency_latch"`
	Language       string                        `json:"language"`
	LastResult     *gateway.ClassificationResult `json:"last_result,omitempty"`
}

// Controller drives the perception-feedback loop. All state lives
// behind one mutex; the scan loop, voice queries and observers read it
// through that single source of truth.
type Controller struct {
	source   capture.Source
	analyzer Analyzer
	cues     Cues
	talker   Talker
	mic      voice.Input
	logger   *slog.Logger

	interval        time.Duration
	safeSpeechEvery int

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	latch      bool
	inFlight   bool
	language   string
	last       *gateway.ClassificationResult
	safeStreak int
	timer      *time.Timer

	onUpdate func(Snapshot)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the pause between completed scan cycles.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLanguage sets the initial output language.
func WithLanguage(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithSafeSpeechEvery sets the SAFE speech throttle period. 1 speaks
// on every SAFE cycle.
func WithSafeSpeechEvery(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.safeSpeechEvery = n
		}
	}
}

// WithOnUpdate registers a callback invoked after every state or
// result change, outside the controller lock.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With("component", "perception")
	}
}

// New creates a Controller in the Idle state.
func New(source capture.Source, analyzer Analyzer, cues Cues, talker Talker, mic voice.Input, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:          source,
		analyzer:        analyzer,
		cues:            cues,
		talker:          talker,
		mic:             mic,
		logger:          slog.Default().With("component", "perception"),
		interval:        DefaultScanInterval,
		safeSpeechEvery: DefaultSafeSpeechEvery,
		language:        "en-US",
		state:           Idle,
		ctx:             ctx,
		cancel:          cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:          c.state,
		EmergencyLatch: c.latch,
		Language:       c.language,
		LastResult:     c.last,
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onUpdate
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// SetOnUpdate registers the update callback after construction; the
// overlay server and the controller reference each other, so one side
// has to be wired late.
func (c *Controller) SetOnUpdate(fn func(Snapshot)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// SetLanguage changes the output language for subsequent cycles.
func (c *Controller) SetLanguage(lang string) {
	if lang == "" {
		return
	}
	c.mu.Lock()
	c.language = lang
	c.mu.Unlock()
	c.notify()
}

// StartScanning enters Scanning and fires the first cycle immediately.
// No-op while latched, listening or already scanning.
func (c *Controller) StartScanning() {
	c.mu.Lock()
	if c.latch || c.state != Idle {
		c.mu.Unlock()
		return
	}
	c.state = Scanning
	c.safeStreak = 0
	c.mu.Unlock()

	c.notify()
	c.Tick()
}

// StopScanning returns to Idle and clears the last result. An in-flight
// cycle is not cancelled; its late result is discarded (see runCycle).
func (c *Controller) StopScanning() {
	c.mu.Lock()
	if c.state != Scanning {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	c.last = nil
	c.stopTimerLocked()
	c.mu.Unlock()
	c.notify()
}

// Reset clears the emergency latch and all transient state, returning
// to Idle. Scanning resumes only on an explicit StartScanning.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = Idle
	c.latch = false
	c.last = nil
	c.safeStreak = 0
	c.stopTimerLocked()
	c.mu.Unlock()
	c.notify()
}

// Close tears the controller down: cancels in-flight work and forcibly
// clears the gates so nothing is left stuck.
func (c *Controller) Close() {
	c.cancel()
	c.mu.Lock()
	c.state = Idle
	c.inFlight = false
	c.stopTimerLocked()
	c.mu.Unlock()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Tick attempts one analysis cycle. The latch, the state and the
// single-flight gate are all checked under the lock before anything
// starts; a tick that loses any check is dropped, never queued.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state != Scanning || c.latch || c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	go c.runCycle()
}

// runCycle performs one capture-analyze-feedback pass. The deferred
// block is the only place the in-flight gate clears and the only place
// the next cycle gets scheduled.
func (c *Controller) runCycle() {
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		again := c.state == Scanning && !c.latch
		if again {
			c.stopTimerLocked()
			c.timer = time.AfterFunc(c.interval, c.Tick)
		}
		c.mu.Unlock()
	}()

	frame, err := c.source.Capture(c.ctx)
	if err != nil {
		c.logger.Error("frame capture failed", "error", err)
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		if toneErr := c.cues.ErrorTone(); toneErr != nil {
			c.logger.Error("error tone failed", "error", toneErr)
		}
		c.notify()
		return
	}

	c.mu.Lock()
	language := c.language
	c.mu.Unlock()

	result := c.analyzer.AnalyzeFrame(c.ctx, frame, language, "")

	c.mu.Lock()
	if c.state != Scanning {
		// The user paused while the call was in flight; a late result
		// must not latch or make noise.
		c.mu.Unlock()
		return
	}
	c.last = result
	if result.SafetyStatus == gateway.SafetyStop {
		c.latch = true
	}
	speak := c.updateSpeechThrottleLocked(result.SafetyStatus)
	c.mu.Unlock()

	c.notify()
	c.dispatchFeedback(result, speak)
}

// updateSpeechThrottleLocked advances the SAFE streak counter and
// reports whether this cycle should speak.
func (c *Controller) updateSpeechThrottleLocked(status gateway.SafetyStatus) bool {
	if status != gateway.SafetySafe {
		c.safeStreak = 0
		return true
	}
	c.safeStreak++
	return (c.safeStreak-1)%c.safeSpeechEvery == 0
}

// dispatchFeedback plays the status cue and speaks the instruction.
// Pan clamping happens at the audio engine boundary, not here.
func (c *Controller) dispatchFeedback(result *gateway.ClassificationResult, speak bool) {
	var err error
	switch result.SafetyStatus {
	case gateway.SafetyStop:
		err = c.cues.Alarm(result.StereoPan)
	case gateway.SafetyCaution:
		err = c.cues.CautionPulse(result.StereoPan)
	default:
		err = c.cues.SonarPing(result.StereoPan)
	}
	if err != nil {
		c.logger.Error("feedback cue failed", "error", err, "status", result.SafetyStatus)
	}

	if speak {
		c.talker.Say(c.ctx, spokenText(result))
	}
}

// spokenText picks the utterance for a result: command plus summary
// when the combination stays short, the command alone otherwise.
func spokenText(result *gateway.ClassificationResult) string {
	command := strings.TrimSpace(result.NavigationCommand)
	summary := strings.TrimSpace(result.ReasoningSummary)
	if summary == "" {
		return command
	}
	if command == "" {
		return summary
	}

	combined := command + ". " + summary
	if len(strings.Fields(combined)) <= maxCombinedWords {
		return combined
	}
	return command
}

// StartListening opens a recording session. Scanning pauses first; the
// next scheduled cycle will find the state changed and drop itself.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	switch c.state {
	case Listening:
		c.mu.Unlock()
		return ErrAlreadyListening
	case ProcessingQuery:
		c.mu.Unlock()
		return ErrBusy
	case Scanning:
		c.stopTimerLocked()
	}
	c.state = Listening
	c.mu.Unlock()
	c.notify()

	if err := c.mic.Start(); err != nil {
		c.logger.Error("microphone unavailable", "error", err)
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		if toneErr := c.cues.ErrorTone(); toneErr != nil {
			c.logger.Error("error tone failed", "error", toneErr)
		}
		c.notify()
		return err
	}
	return nil
}

// StopListening finalizes the recording. A clip below the noise
// threshold aborts with an error tone before any remote call; a usable
// clip moves to ProcessingQuery and is answered asynchronously.
func (c *Controller) StopListening() error {
	c.mu.Lock()
	if c.state != Listening {
		c.mu.Unlock()
		return ErrNotListening
	}
	c.mu.Unlock()

	clip, err := c.mic.Stop()
	if err != nil {
		if errors.Is(err, voice.ErrClipTooShort) {
			c.logger.Info("recording discarded as noise")
		} else {
			c.logger.Error("recording failed", "error", err)
		}
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		if toneErr := c.cues.ErrorTone(); toneErr != nil {
			c.logger.Error("error tone failed", "error", toneErr)
		}
		c.notify()
		return err
	}

	c.mu.Lock()
	c.state = ProcessingQuery
	c.mu.Unlock()
	c.notify()

	go c.processQuery(clip)
	return nil
}

// processQuery transcribes the clip, re-analyzes a fresh frame with the
// question embedded, and speaks the answer. Every exit path returns to
// Idle; ProcessingQuery can never stick.
func (c *Controller) processQuery(clip *voice.Clip) {
	defer func() {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		c.notify()
	}()

	c.mu.Lock()
	language := c.language
	c.mu.Unlock()

	transcript := c.analyzer.TranscribeAudio(c.ctx, clip.Data, clip.MIMEType, language)
	if transcript == "" {
		c.logger.Info("no intelligible speech in recording")
		if err := c.cues.ErrorTone(); err != nil {
			c.logger.Error("error tone failed", "error", err)
		}
		return
	}
	c.logger.Info("voice query transcribed", "transcript", transcript)

	frame, err := c.source.Capture(c.ctx)
	if err != nil {
		c.logger.Error("frame capture failed", "error", err)
		if toneErr := c.cues.ErrorTone(); toneErr != nil {
			c.logger.Error("error tone failed", "error", toneErr)
		}
		return
	}

	result := c.analyzer.AnalyzeFrame(c.ctx, frame, language, transcript)

	c.mu.Lock()
	c.last = result
	c.mu.Unlock()
	c.notify()

	// Answers do not latch: the verdict belongs to a question, not to
	// the scan loop the latch protects.
	c.talker.Say(c.ctx, spokenText(result))
}
