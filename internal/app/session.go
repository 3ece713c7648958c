package app

import (
	"errors"
	"sync"
	"time"

	"slidegen/internal/deck"
	"slidegen/internal/i18n"
)

var (
	ErrBusy      = errors.New("generation already in progress")
	ErrRestarted = errors.New("generation restarted")
)

// Snapshot is a deep copy of the session state.
type Snapshot struct {
	Status     deck.Status
	Topic      string
	Language   string
	Theme      deck.Theme
	Slides     []deck.Slide
	Background *deck.Image
	Progress   deck.Progress
	Error      string
	Usage      *deck.Usage
	UpdatedAt  time.Time
}

func (snap Snapshot) clone() Snapshot {
	out := snap
	out.Slides = deck.CloneSlides(snap.Slides)
	out.Background = snap.Background.Clone()
	if snap.Usage != nil {
		usage := *snap.Usage
		out.Usage = &usage
	}
	return out
}

// Session holds the state of one presentation. The pipeline is its only
// writer; readers take snapshots.
type Session struct {
	mu       sync.RWMutex
	state    Snapshot
	run      uint64
	onChange func(Snapshot)
}

func NewSession(language string) *Session {
	if !i18n.Supported(language) {
		language = string(i18n.Default)
	}
	return &Session{
		state: Snapshot{
			Status:    deck.StatusIdle,
			Language:  language,
			Theme:     deck.LookupTheme(deck.DefaultThemeID),
			UpdatedAt: time.Now(),
		},
	}
}

// OnChange registers an observer called after every published mutation.
// The observer runs outside the session lock.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Session) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status.Generating()
}

// Deck returns the finished deck. It reports false unless the session is ready.
func (s *Session) Deck() (*deck.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Status != deck.StatusReady {
		return nil, false
	}
	snap := s.state.clone()
	return &deck.Deck{
		Topic:      snap.Topic,
		Language:   snap.Language,
		Theme:      snap.Theme,
		Slides:     snap.Slides,
		Background: snap.Background,
		Usage:      snap.Usage,
		CreatedAt:  snap.UpdatedAt,
	}, true
}

// Restart returns the session to idle from any state. A run still in
// flight keeps going until its next step, and nothing it produces is applied.
func (s *Session) Restart() {
	s.mu.Lock()
	s.run++
	s.state.Status = deck.StatusIdle
	s.state.Slides = nil
	s.state.Background = nil
	s.state.Progress = deck.Progress{}
	s.state.Error = ""
	s.state.Usage = nil
	s.state.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.publish()
}

// SetLanguage changes the interface language while no run is active.
func (s *Session) SetLanguage(language string) bool {
	if !i18n.Supported(language) {
		return false
	}
	s.mu.Lock()
	if s.state.Status.Generating() {
		s.mu.Unlock()
		return false
	}
	s.state.Language = language
	s.mu.Unlock()

	s.publish()
	return true
}

func (s *Session) begin(req deck.Request) (uint64, error) {
	s.mu.Lock()
	if s.state.Status.Generating() {
		s.mu.Unlock()
		return 0, ErrBusy
	}

	s.run++
	s.state = Snapshot{
		Status:    deck.StatusGeneratingPlan,
		Topic:     req.Topic,
		Language:  req.Language,
		Theme:     deck.LookupTheme(deck.DefaultThemeID),
		UpdatedAt: time.Now(),
	}
	run := s.run
	s.mu.Unlock()

	s.publish()
	return run, nil
}

func (s *Session) current(run uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run == run
}

// update applies fn when run is still current and publishes the result.
func (s *Session) update(run uint64, fn func(state *Snapshot)) bool {
	s.mu.Lock()
	if s.run != run {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.state.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.publish()
	return true
}

func (s *Session) publish() {
	s.mu.RLock()
	fn := s.onChange
	var snap Snapshot
	if fn != nil {
		snap = s.state.clone()
	}
	s.mu.RUnlock()

	if fn != nil {
		fn(snap)
	}
}
