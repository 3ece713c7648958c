package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"slidegen/internal/deck"
	"slidegen/internal/i18n"
	"slidegen/internal/llm"
	"slidegen/pkg/config"
)

type mockPlanner struct {
	plan    *deck.Plan
	err     error
	calls   int
	release chan struct{}
	started chan struct{}
}

func (m *mockPlanner) GeneratePlan(ctx context.Context, _ deck.Request) (*deck.Plan, error) {
	m.calls++
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	plan := *m.plan
	plan.Slides = deck.CloneSlides(m.plan.Slides)
	return &plan, nil
}

type imageCall struct {
	prompt string
	kind   llm.ImageKind
}

type mockImages struct {
	mu    sync.Mutex
	calls []imageCall
	fail  map[string]bool
	empty map[string]bool
	hook  func(call int)
}

func (m *mockImages) GenerateImage(_ context.Context, prompt string, kind llm.ImageKind) (*deck.Image, error) {
	m.mu.Lock()
	m.calls = append(m.calls, imageCall{prompt: prompt, kind: kind})
	n := len(m.calls)
	m.mu.Unlock()

	if m.hook != nil {
		m.hook(n)
	}
	if m.fail[prompt] {
		return nil, errors.New("image model unavailable")
	}
	if m.empty[prompt] {
		return nil, nil
	}
	return &deck.Image{Data: []byte(prompt), MIMEType: "image/png"}, nil
}

func (m *mockImages) slideCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var prompts []string
	for _, c := range m.calls {
		if c.kind == llm.ImageKindSlide {
			prompts = append(prompts, c.prompt)
		}
	}
	return prompts
}

type mockStore struct {
	saved *deck.Deck
	err   error
}

func (m *mockStore) SaveDeck(_ context.Context, d *deck.Deck) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = d
	return "output/deck", nil
}

func testConfig(minPromptLength int) *config.Config {
	return &config.Config{
		Generation: config.GenerationConfig{MinPromptLength: minPromptLength},
	}
}

func solarPlan() *deck.Plan {
	return &deck.Plan{
		ThemeID: "nature_green",
		Slides: []deck.Slide{
			{Title: "Solar Energy", Layout: deck.LayoutTitle},
			{Title: "How panels work", Content: []string{"photons", "cells"}, Layout: deck.LayoutImageSplit, ImagePrompt: "solar panels on a roof"},
			{Title: "Costs", Content: []string{"falling prices"}, Layout: deck.LayoutBulletPointsLeft, ImagePrompt: "sun"},
			{Title: "Grid", Content: []string{"storage"}, Layout: deck.LayoutBulletPointsRight, ImagePrompt: "wind turbine and solar farm"},
			{Title: "Future", Content: []string{"adoption"}, Layout: deck.LayoutCentered, ImagePrompt: "a family charging an electric car"},
		},
		Usage: &deck.Usage{Model: "gemini-2.5-flash", InputTokens: 100, OutputTokens: 400, TotalTokens: 500},
	}
}

func solarRequest() deck.Request {
	return deck.Request{Topic: "Solar Energy", SlideCount: 5, PlanCount: 1, Language: "en"}
}

func newTestPipeline(planner llm.Planner, images llm.ImageGenerator, minPromptLength int) *Pipeline {
	return NewPipeline(NewService(ServiceOptions{
		Config:  testConfig(minPromptLength),
		Planner: planner,
		Images:  images,
	}))
}

func TestServiceGetters(t *testing.T) {
	cfg := &config.Config{}
	svc := NewService(ServiceOptions{Config: cfg})

	if svc.Config() != cfg {
		t.Error("Config() returned wrong config")
	}
	if svc.Planner() != nil {
		t.Error("Planner() should return nil when set to nil")
	}
	if svc.Images() != nil {
		t.Error("Images() should return nil when set to nil")
	}
	if svc.Store() != nil {
		t.Error("Store() should return nil when set to nil")
	}
}

func TestGenerateSolarEnergyScenario(t *testing.T) {
	images := &mockImages{fail: map[string]bool{"wind turbine and solar farm": true}}
	pipeline := newTestPipeline(&mockPlanner{plan: solarPlan()}, images, 5)
	session := NewSession("uz")

	var progress []deck.Progress
	session.OnChange(func(snap Snapshot) {
		if snap.Status == deck.StatusGeneratingImages {
			progress = append(progress, snap.Progress)
		}
	})

	if err := pipeline.Generate(context.Background(), session, solarRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	snap := session.Snapshot()
	if snap.Status != deck.StatusReady {
		t.Errorf("Status = %q, want ready", snap.Status)
	}
	if len(snap.Slides) != 5 {
		t.Fatalf("len(Slides) = %d, want 5", len(snap.Slides))
	}
	if snap.Progress != (deck.Progress{Current: 3, Total: 3}) {
		t.Errorf("Progress = %+v, want 3/3", snap.Progress)
	}
	if snap.Theme.ID != "nature_green" {
		t.Errorf("Theme = %q, want nature_green", snap.Theme.ID)
	}
	if snap.Language != "en" || snap.Topic != "Solar Energy" {
		t.Errorf("Topic/Language = %q/%q", snap.Topic, snap.Language)
	}
	if snap.Usage == nil || snap.Usage.TotalTokens != 500 {
		t.Errorf("Usage = %+v, want plan usage", snap.Usage)
	}

	wantImage := []bool{false, true, false, false, true}
	for i, want := range wantImage {
		if got := snap.Slides[i].Image != nil; got != want {
			t.Errorf("slide %d has image = %v, want %v", i, got, want)
		}
	}

	wantCalls := []string{"solar panels on a roof", "wind turbine and solar farm", "a family charging an electric car"}
	if got := images.slideCalls(); !equalStrings(got, wantCalls) {
		t.Errorf("image requests = %v, want %v", got, wantCalls)
	}

	wantProgress := []deck.Progress{{Current: 0, Total: 3}, {Current: 1, Total: 3}, {Current: 2, Total: 3}, {Current: 3, Total: 3}}
	if len(progress) != len(wantProgress) {
		t.Fatalf("progress updates = %v, want %v", progress, wantProgress)
	}
	for i := range wantProgress {
		if progress[i] != wantProgress[i] {
			t.Errorf("progress[%d] = %+v, want %+v", i, progress[i], wantProgress[i])
		}
	}
}

func TestGeneratePlannerFailure(t *testing.T) {
	tests := []struct {
		name     string
		language string
	}{
		{name: "english", language: "en"},
		{name: "uzbek", language: "uz"},
		{name: "russian", language: "ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := &mockImages{}
			pipeline := newTestPipeline(&mockPlanner{err: errors.New("quota exceeded")}, images, 5)
			session := NewSession("uz")

			req := solarRequest()
			req.Language = tt.language
			err := pipeline.Generate(context.Background(), session, req)
			if err == nil {
				t.Fatal("Generate() expected error")
			}

			snap := session.Snapshot()
			if snap.Status != deck.StatusError {
				t.Errorf("Status = %q, want error", snap.Status)
			}
			if want := i18n.For(tt.language).ErrorTitle; snap.Error != want {
				t.Errorf("Error = %q, want %q", snap.Error, want)
			}
			if len(images.calls) != 0 {
				t.Errorf("image requests = %d, want 0", len(images.calls))
			}
		})
	}
}

func TestGenerateOnlyQualifyingSlides(t *testing.T) {
	tests := []struct {
		name            string
		minPromptLength int
		prompts         []string
		wantRequests    int
	}{
		{name: "defaultThreshold", minPromptLength: 5, prompts: []string{"", "12345", "123456"}, wantRequests: 1},
		{name: "zeroThreshold", minPromptLength: 0, prompts: []string{"", "a", "abc"}, wantRequests: 2},
		{name: "higherThreshold", minPromptLength: 10, prompts: []string{"short one", "a much longer prompt"}, wantRequests: 1},
		{name: "unicodeCountsCharacters", minPromptLength: 5, prompts: []string{"quyosh", "солнце", "日本の太陽"}, wantRequests: 2},
		{name: "noneQualify", minPromptLength: 5, prompts: []string{"", "sun"}, wantRequests: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &deck.Plan{ThemeID: "modern_blue"}
			for _, p := range tt.prompts {
				plan.Slides = append(plan.Slides, deck.Slide{Title: "t", ImagePrompt: p})
			}

			images := &mockImages{}
			session := NewSession("en")
			var sawImages bool
			session.OnChange(func(snap Snapshot) {
				if snap.Status == deck.StatusGeneratingImages {
					sawImages = true
				}
			})

			pipeline := newTestPipeline(&mockPlanner{plan: plan}, images, tt.minPromptLength)
			if err := pipeline.Generate(context.Background(), session, solarRequest()); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			if got := len(images.slideCalls()); got != tt.wantRequests {
				t.Errorf("image requests = %d, want %d", got, tt.wantRequests)
			}
			snap := session.Snapshot()
			if snap.Progress.Total != tt.wantRequests {
				t.Errorf("Progress.Total = %d, want %d", snap.Progress.Total, tt.wantRequests)
			}
			if sawImages != (tt.wantRequests > 0) {
				t.Errorf("entered generating_images = %v, want %v", sawImages, tt.wantRequests > 0)
			}
			if snap.Status != deck.StatusReady {
				t.Errorf("Status = %q, want ready", snap.Status)
			}
		})
	}
}

func TestGenerateProgressCountsEveryAttempt(t *testing.T) {
	plan := &deck.Plan{Slides: []deck.Slide{
		{Title: "a", ImagePrompt: "first prompt"},
		{Title: "b", ImagePrompt: "second prompt"},
		{Title: "c", ImagePrompt: "third prompt"},
	}}
	images := &mockImages{
		fail:  map[string]bool{"first prompt": true},
		empty: map[string]bool{"second prompt": true},
	}
	session := NewSession("en")

	var totals []int
	var currents []int
	session.OnChange(func(snap Snapshot) {
		if snap.Status == deck.StatusGeneratingImages {
			totals = append(totals, snap.Progress.Total)
			currents = append(currents, snap.Progress.Current)
		}
	})

	if err := newTestPipeline(&mockPlanner{plan: plan}, images, 5).Generate(context.Background(), session, solarRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i, total := range totals {
		if total != 3 {
			t.Errorf("update %d total = %d, want 3", i, total)
		}
	}
	for i := 1; i < len(currents); i++ {
		if currents[i] != currents[i-1]+1 {
			t.Errorf("current went %d -> %d, want +1", currents[i-1], currents[i])
		}
	}

	snap := session.Snapshot()
	if snap.Progress.Current != 3 {
		t.Errorf("Progress.Current = %d, want 3", snap.Progress.Current)
	}
	if snap.Slides[0].Image != nil || snap.Slides[1].Image != nil {
		t.Error("failed or empty results should leave the slide without an image")
	}
	if snap.Slides[2].Image == nil {
		t.Error("successful result should be attached")
	}
}

func TestGenerateBackground(t *testing.T) {
	tests := []struct {
		name           string
		prompt         string
		fail           bool
		wantBackground bool
		wantRequests   int
	}{
		{name: "backgroundGenerated", prompt: "soft gradient", wantBackground: true, wantRequests: 1},
		{name: "backgroundFailureTolerated", prompt: "soft gradient", fail: true, wantRequests: 1},
		{name: "noBackgroundPrompt", prompt: "", wantRequests: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &deck.Plan{
				BackgroundPrompt: tt.prompt,
				Slides:           []deck.Slide{{Title: "only", ImagePrompt: "a slide image prompt"}},
			}
			images := &mockImages{fail: map[string]bool{"soft gradient": tt.fail}}
			session := NewSession("en")

			var statusDuringBackground deck.Status
			images.hook = func(call int) {
				if call == 1 {
					statusDuringBackground = session.Snapshot().Status
				}
			}

			if err := newTestPipeline(&mockPlanner{plan: plan}, images, 5).Generate(context.Background(), session, solarRequest()); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			snap := session.Snapshot()
			if (snap.Background != nil) != tt.wantBackground {
				t.Errorf("Background present = %v, want %v", snap.Background != nil, tt.wantBackground)
			}

			var backgrounds int
			for _, c := range images.calls {
				if c.kind == llm.ImageKindBackground {
					backgrounds++
				}
			}
			if backgrounds != tt.wantRequests {
				t.Errorf("background requests = %d, want %d", backgrounds, tt.wantRequests)
			}
			if tt.wantRequests > 0 && statusDuringBackground != deck.StatusGeneratingPlan {
				t.Errorf("status during background = %q, want generating_plan", statusDuringBackground)
			}
			if snap.Status != deck.StatusReady {
				t.Errorf("Status = %q, want ready", snap.Status)
			}
		})
	}
}

func TestGenerateWithoutImageGenerator(t *testing.T) {
	pipeline := NewPipeline(NewService(ServiceOptions{
		Config:  testConfig(5),
		Planner: &mockPlanner{plan: solarPlan()},
	}))
	session := NewSession("en")

	if err := pipeline.Generate(context.Background(), session, solarRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	snap := session.Snapshot()
	if snap.Status != deck.StatusReady || len(snap.Slides) != 5 {
		t.Errorf("Status = %q, slides = %d", snap.Status, len(snap.Slides))
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	planner := &mockPlanner{plan: solarPlan()}
	session := NewSession("en")

	req := solarRequest()
	req.Topic = "   "
	err := newTestPipeline(planner, &mockImages{}, 5).Generate(context.Background(), session, req)
	if !errors.Is(err, deck.ErrInvalidRequest) {
		t.Errorf("Generate() error = %v, want ErrInvalidRequest", err)
	}
	if planner.calls != 0 {
		t.Errorf("planner calls = %d, want 0", planner.calls)
	}
	if got := session.Snapshot().Status; got != deck.StatusIdle {
		t.Errorf("Status = %q, want idle", got)
	}
}

func TestGenerateBusy(t *testing.T) {
	planner := &mockPlanner{
		plan:    solarPlan(),
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	pipeline := newTestPipeline(planner, &mockImages{}, 5)
	session := NewSession("en")

	done := make(chan error, 1)
	go func() { done <- pipeline.Generate(context.Background(), session, solarRequest()) }()
	<-planner.started

	if !session.Busy() {
		t.Error("Busy() = false while planning")
	}
	if err := pipeline.Generate(context.Background(), session, solarRequest()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Generate() error = %v, want ErrBusy", err)
	}

	close(planner.release)
	if err := <-done; err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	if session.Busy() {
		t.Error("Busy() = true after the run finished")
	}
}

func TestRestartDiscardsInFlightPlan(t *testing.T) {
	planner := &mockPlanner{
		plan:    solarPlan(),
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	images := &mockImages{}
	pipeline := newTestPipeline(planner, images, 5)
	session := NewSession("en")

	done := make(chan error, 1)
	go func() { done <- pipeline.Generate(context.Background(), session, solarRequest()) }()
	<-planner.started

	session.Restart()
	close(planner.release)

	if err := <-done; !IsRestarted(err) {
		t.Errorf("Generate() error = %v, want ErrRestarted", err)
	}
	snap := session.Snapshot()
	if snap.Status != deck.StatusIdle || len(snap.Slides) != 0 {
		t.Errorf("Status = %q, slides = %d, want idle and empty", snap.Status, len(snap.Slides))
	}
	if len(images.calls) != 0 {
		t.Errorf("image requests = %d, want 0 after restart", len(images.calls))
	}
}

func TestRestartDuringImages(t *testing.T) {
	images := &mockImages{}
	session := NewSession("en")
	images.hook = func(call int) {
		if call == 1 {
			session.Restart()
		}
	}

	err := newTestPipeline(&mockPlanner{plan: solarPlan()}, images, 5).Generate(context.Background(), session, solarRequest())
	if !IsRestarted(err) {
		t.Errorf("Generate() error = %v, want ErrRestarted", err)
	}
	if got := len(images.slideCalls()); got != 1 {
		t.Errorf("image requests = %d, want 1", got)
	}
	snap := session.Snapshot()
	if snap.Status != deck.StatusIdle || snap.Slides != nil || snap.Background != nil {
		t.Errorf("state after restart = %+v", snap)
	}
}

func TestRestartFromAnyState(t *testing.T) {
	tests := []struct {
		name    string
		planner *mockPlanner
	}{
		{name: "fromReady", planner: &mockPlanner{plan: &deck.Plan{BackgroundPrompt: "bg", Slides: []deck.Slide{{Title: "a", ImagePrompt: "long enough prompt"}}}}},
		{name: "fromError", planner: &mockPlanner{err: errors.New("boom")}},
		{name: "fromIdle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession("en")
			if tt.planner != nil {
				_ = newTestPipeline(tt.planner, &mockImages{}, 5).Generate(context.Background(), session, solarRequest())
			}

			session.Restart()

			snap := session.Snapshot()
			if snap.Status != deck.StatusIdle {
				t.Errorf("Status = %q, want idle", snap.Status)
			}
			if len(snap.Slides) != 0 || snap.Background != nil {
				t.Error("Restart() should clear slides and background")
			}
			if snap.Error != "" || snap.Progress != (deck.Progress{}) {
				t.Errorf("Error = %q, Progress = %+v, want cleared", snap.Error, snap.Progress)
			}
		})
	}
}

func TestGenerateContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	images := &mockImages{hook: func(call int) {
		if call == 1 {
			cancel()
		}
	}}
	session := NewSession("en")

	err := newTestPipeline(&mockPlanner{plan: solarPlan()}, images, 5).Generate(ctx, session, solarRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
	if got := session.Snapshot().Status; got != deck.StatusError {
		t.Errorf("Status = %q, want error", got)
	}
}

func TestSessionSnapshotIsDeepCopy(t *testing.T) {
	session := NewSession("en")
	if err := newTestPipeline(&mockPlanner{plan: solarPlan()}, &mockImages{}, 5).Generate(context.Background(), session, solarRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	snap := session.Snapshot()
	snap.Slides[1].Title = "changed"
	snap.Slides[1].Content[0] = "changed"
	snap.Slides[1].Image.Data[0] = 'X'

	fresh := session.Snapshot()
	if fresh.Slides[1].Title == "changed" || fresh.Slides[1].Content[0] == "changed" || fresh.Slides[1].Image.Data[0] == 'X' {
		t.Error("Snapshot() shares memory with the session")
	}
}

func TestSessionDeck(t *testing.T) {
	session := NewSession("en")
	if _, ok := session.Deck(); ok {
		t.Error("Deck() ok = true for idle session")
	}

	if err := newTestPipeline(&mockPlanner{plan: solarPlan()}, &mockImages{}, 5).Generate(context.Background(), session, solarRequest()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	d, ok := session.Deck()
	if !ok {
		t.Fatal("Deck() ok = false for ready session")
	}
	if d.Topic != "Solar Energy" || len(d.Slides) != 5 || d.ImageCount() != 3 {
		t.Errorf("Deck() = topic %q, %d slides, %d images", d.Topic, len(d.Slides), d.ImageCount())
	}
	if d.CreatedAt.IsZero() {
		t.Error("Deck().CreatedAt is zero")
	}
}

func TestSessionSetLanguage(t *testing.T) {
	session := NewSession("xx")
	if got := session.Snapshot().Language; got != string(i18n.Default) {
		t.Errorf("default Language = %q, want %q", got, i18n.Default)
	}
	if !session.SetLanguage("ru") {
		t.Error("SetLanguage(ru) = false")
	}
	if session.SetLanguage("de") {
		t.Error("SetLanguage(de) = true for unsupported language")
	}
	if got := session.Snapshot().Language; got != "ru" {
		t.Errorf("Language = %q, want ru", got)
	}
}

func TestServiceExport(t *testing.T) {
	store := &mockStore{}
	svc := NewService(ServiceOptions{Config: testConfig(5), Store: store})
	d := &deck.Deck{Topic: "x", Slides: []deck.Slide{{Title: "a"}}}

	location, err := svc.Export(context.Background(), d)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if location != "output/deck" || store.saved != d {
		t.Errorf("Export() location = %q, saved = %v", location, store.saved)
	}

	store.err = errors.New("disk full")
	if _, err := svc.Export(context.Background(), d); err == nil {
		t.Error("Export() expected error from store")
	}

	if _, err := NewService(ServiceOptions{}).Export(context.Background(), d); err == nil {
		t.Error("Export() expected error without store")
	}
}

func TestQualifyingSlides(t *testing.T) {
	slides := []deck.Slide{
		{ImagePrompt: ""},
		{ImagePrompt: "123456"},
		{ImagePrompt: "12345"},
		{ImagePrompt: "a longer prompt"},
	}

	got := qualifyingSlides(slides, 5)
	want := []int{1, 3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("qualifyingSlides() = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStart(t *testing.T) {
	planner := &mockPlanner{
		plan:    solarPlan(),
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	pipeline := newTestPipeline(planner, &mockImages{}, 5)
	session := NewSession("en")

	done, err := pipeline.Start(context.Background(), session, solarRequest())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := session.Snapshot().Status; got != deck.StatusGeneratingPlan {
		t.Errorf("Status after Start() = %q, want generating_plan", got)
	}

	if _, err := pipeline.Start(context.Background(), session, solarRequest()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start() error = %v, want ErrBusy", err)
	}

	<-planner.started
	close(planner.release)
	if err := <-done; err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := session.Snapshot().Status; got != deck.StatusReady {
		t.Errorf("Status = %q, want ready", got)
	}
}

func TestStartInvalidRequest(t *testing.T) {
	req := solarRequest()
	req.Language = "de"
	_, err := newTestPipeline(&mockPlanner{plan: solarPlan()}, &mockImages{}, 5).Start(context.Background(), NewSession("en"), req)
	if !errors.Is(err, deck.ErrInvalidRequest) {
		t.Errorf("Start() error = %v, want ErrInvalidRequest", err)
	}
}
