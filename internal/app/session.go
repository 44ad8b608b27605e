package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/metrics"
)

// Generator turns study material into a raw quiz document (JSON).
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]byte, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, for deterministic timing in tests.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithTickInterval sets the countdown tick period. Zero disables the background
// ticker; the countdown then only advances through explicit ticks.
func WithTickInterval(d time.Duration) Option { return func(s *Session) { s.tickEvery = d } }

// WithRandSource seeds option shuffling.
func WithRandSource(src rand.Source) Option {
	return func(s *Session) { s.shuffler = NewShuffler(src) }
}

func WithGenerator(g Generator) Option { return func(s *Session) { s.generator = g } }

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.logger = l } }

// Session is one user's quiz attempt state machine:
// upload -> (generating) -> active -> results -> upload.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time
	tickEvery time.Duration
	shuffler  *Shuffler
	generator Generator
	logger    *zap.Logger

	mu          sync.Mutex
	state       domain.State
	run         *attempt
	lastErr     error
	closed      bool
	subscribers map[chan domain.Notification]struct{}
}

// attempt holds everything tied to one loaded document. Restart drops it whole.
type attempt struct {
	mode      domain.Mode
	doc       domain.QuizDocument
	timeLimit int

	index    int
	answers  []domain.AnswerRecord
	question *openQuestion
	result   *domain.QuizResult
	review   *Review

	card int
}

// openQuestion is the exam question on screen, with the exact shuffle shown.
type openQuestion struct {
	q        domain.Question
	view     ShuffledView
	selected []int
	timer    *Timer
	stopTick context.CancelFunc
}

func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		id:          id,
		now:         time.Now,
		tickEvery:   time.Second,
		logger:      zap.NewNop(),
		state:       domain.StateUpload,
		subscribers: make(map[chan domain.Notification]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shuffler == nil {
		s.shuffler = NewShuffler(nil)
	}
	s.createdAt = s.now()
	return s
}

func (s *Session) ID() string { return s.id }

// Load starts an attempt with a document supplied by the caller. timeLimit is the
// per-question limit in seconds for exam mode; 0 means untimed.
func (s *Session) Load(doc domain.QuizDocument, mode domain.Mode, timeLimit int) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}
	if timeLimit < 0 {
		return domain.ErrInvalidTimeLimit
	}
	if err := domain.HandAuthored.Validate(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionNotFound
	}
	if err := s.transitionLocked(EventLoad); err != nil {
		return err
	}
	s.beginLocked(doc, mode, timeLimit)
	return nil
}

// Generate asks the generator for a quiz and starts it untimed. The session stays
// in generating until the generator returns; every failure returns it to upload.
func (s *Session) Generate(ctx context.Context, req domain.GenerationRequest, mode domain.Mode) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if s.generator == nil {
		return fmt.Errorf("%w: generator not configured", domain.ErrGenerationFailed)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if err := s.transitionLocked(EventGenerate); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lastErr = nil
	s.mu.Unlock()

	raw, genErr := s.generator.Generate(ctx, req)
	var doc domain.QuizDocument
	if genErr != nil {
		genErr = &domain.GenerationError{Kind: domain.GenerationService, Err: genErr}
	} else if doc, genErr = domain.Generated.Parse(raw); genErr != nil {
		genErr = &domain.GenerationError{Kind: domain.GenerationEmpty, Err: genErr}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionNotFound
	}
	if genErr != nil {
		var ge *domain.GenerationError
		errors.As(genErr, &ge)
		metrics.Generations.WithLabelValues(generationOutcome(ge.Kind)).Inc()
		s.logger.Warn("quiz generation failed", zap.String("session", s.id), zap.Error(genErr))
		s.lastErr = genErr
		_ = s.transitionLocked(EventGenerationFailed)
		title := "Generation Error"
		if ge.Kind == domain.GenerationEmpty {
			title = "Generation Failed"
		}
		s.broadcastLocked(domain.NotifyGenerationFailed, title, genErr.Error())
		return genErr
	}

	metrics.Generations.WithLabelValues("ok").Inc()
	if err := s.transitionLocked(EventGenerated); err != nil {
		return err
	}
	s.beginLocked(doc, mode, 0)
	return nil
}

// Select toggles the option at a display position of the current exam question.
func (s *Session) Select(position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oq, err := s.openQuestionLocked()
	if err != nil {
		return err
	}
	switch oq.timer.State() {
	case TimerPaused:
		return domain.ErrTimerPaused
	case TimerExpired, TimerSubmitted:
		return domain.ErrQuestionClosed
	}
	if position < 0 || position >= len(oq.view) {
		return fmt.Errorf("%w: %d", domain.ErrOptionOutOfRange, position)
	}
	oq.selected = toggle(oq.selected, position, oq.q.IsMultipleChoice)
	return nil
}

// Submit records the current selection for the open question.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oq, err := s.openQuestionLocked()
	if err != nil {
		return err
	}
	taken, err := oq.timer.Submit()
	if err != nil {
		return err
	}
	s.closeQuestionLocked(oq, taken)
	return nil
}

// Pause freezes the current question. Selections are refused until Resume.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oq, err := s.openQuestionLocked()
	if err != nil {
		return err
	}
	if err := oq.timer.Pause(); err != nil {
		return err
	}
	stopTicker(oq)
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oq, err := s.openQuestionLocked()
	if err != nil {
		return err
	}
	if err := oq.timer.Resume(); err != nil {
		return err
	}
	s.startTickerLocked(oq)
	return nil
}

// NextCard and PreviousCard move the study cursor without wrapping.
func (s *Session) NextCard() error {
	return s.moveCard(1)
}

func (s *Session) PreviousCard() error {
	return s.moveCard(-1)
}

func (s *Session) moveCard(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateActive || s.run.mode != domain.ModeStudy {
		return fmt.Errorf("%w: card navigation outside study mode", domain.ErrInvalidTransition)
	}
	next := s.run.card + delta
	if next >= 0 && next < len(s.run.doc.Questions) {
		s.run.card = next
	}
	return nil
}

// ExitStudy leaves study mode for upload.
func (s *Session) ExitStudy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateActive && s.run.mode != domain.ModeStudy {
		return fmt.Errorf("%w: exit study during an exam", domain.ErrInvalidTransition)
	}
	if err := s.transitionLocked(EventExitStudy); err != nil {
		return err
	}
	s.run = nil
	return nil
}

// Restart discards the finished attempt and returns to upload.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(EventRestart); err != nil {
		return err
	}
	s.run = nil
	s.lastErr = nil
	return nil
}

// ReviewNext, ReviewPrevious and ReviewDismiss drive the review pass in results.
func (s *Session) ReviewNext() error {
	return s.withReview((*Review).Next)
}

func (s *Session) ReviewPrevious() error {
	return s.withReview((*Review).Previous)
}

func (s *Session) ReviewDismiss() error {
	return s.withReview((*Review).Dismiss)
}

func (s *Session) withReview(fn func(*Review)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateResults || s.run == nil || s.run.review == nil {
		return fmt.Errorf("%w: review outside results", domain.ErrInvalidTransition)
	}
	fn(s.run.review)
	return nil
}

// Export serializes the loaded document and names the export file.
func (s *Session) Export() ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, "", domain.ErrNoQuiz
	}
	data, err := domain.ExportDocument(s.run.doc)
	if err != nil {
		return nil, "", err
	}
	return data, domain.ExportFileName(s.run.doc.Title), nil
}

// Result returns the finished attempt's result.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil || s.run.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.run.result, true
}

func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of everything a client needs to render the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{SessionID: s.id, State: s.state}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	r := s.run
	if r == nil {
		return snap
	}
	snap.Mode = r.mode
	snap.Title = r.doc.Title
	snap.TotalQuestions = len(r.doc.Questions)
	snap.TimeLimit = r.timeLimit
	snap.Answered = len(r.answers)

	if r.mode == domain.ModeStudy {
		card := r.doc.Questions[r.card]
		snap.QuestionIndex = r.card
		snap.Card = &card
		return snap
	}

	snap.QuestionIndex = r.index
	if oq := r.question; oq != nil && s.state == domain.StateActive {
		snap.Remaining = oq.timer.Remaining()
		snap.Paused = oq.timer.State() == TimerPaused
		view := &domain.QuestionView{
			ID:               oq.q.ID,
			QuestionText:     oq.q.QuestionText,
			IsMultipleChoice: oq.q.IsMultipleChoice,
			Options:          make([]domain.OptionView, len(oq.view)),
			Selected:         sortedKeys(toSet(oq.selected)),
		}
		for i, opt := range oq.view {
			view.Options[i] = domain.OptionView{Position: i, Text: opt.Text}
		}
		snap.Question = view
	}
	if r.result != nil {
		res := *r.result
		snap.Result = &res
		snap.Review = r.review.view()
	}
	return snap
}

// Subscribe returns a channel of session notifications.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 16)

	s.mu.Lock()
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the countdown and releases subscribers. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.run != nil && s.run.question != nil {
		stopTicker(s.run.question)
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) transitionLocked(ev Event) error {
	to, err := Transition(s.state, ev)
	if err != nil {
		return err
	}
	s.logger.Debug("session transition",
		zap.String("session", s.id),
		zap.String("event", string(ev)),
		zap.String("from", string(s.state)),
		zap.String("to", string(to)),
	)
	s.state = to
	return nil
}

func (s *Session) beginLocked(doc domain.QuizDocument, mode domain.Mode, timeLimit int) {
	s.lastErr = nil
	s.run = &attempt{mode: mode, doc: doc}
	metrics.SessionsStarted.WithLabelValues(string(mode)).Inc()

	if mode == domain.ModeStudy {
		s.broadcastLocked(domain.NotifyStudyReady, "Study Mode Activated!", titleOr(doc.Title, "Happy studying!"))
		return
	}
	s.run.timeLimit = timeLimit
	s.run.answers = make([]domain.AnswerRecord, 0, len(doc.Questions))
	s.enterQuestionLocked()
	s.broadcastLocked(domain.NotifyQuizReady, "Quiz Ready!", titleOr(doc.Title, "Good luck!"))
}

// enterQuestionLocked shows run.index with a fresh shuffle and a fresh timer.
func (s *Session) enterQuestionLocked() {
	q := s.run.doc.Questions[s.run.index]
	oq := &openQuestion{
		q:     q,
		view:  s.shuffler.Shuffle(q.Options),
		timer: NewTimer(s.run.timeLimit, s.now),
	}
	oq.timer.Start()
	s.run.question = oq
	s.startTickerLocked(oq)
}

func (s *Session) startTickerLocked(oq *openQuestion) {
	if s.tickEvery <= 0 || oq.timer.Limit() == 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	oq.stopTick = cancel
	timer := oq.timer
	every := s.tickEvery
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.onTick(timer)
			}
		}
	}()
}

func stopTicker(oq *openQuestion) {
	if oq.stopTick != nil {
		oq.stopTick()
		oq.stopTick = nil
	}
}

// onTick advances the countdown of timer if it still belongs to the open question.
func (s *Session) onTick(timer *Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != domain.StateActive || s.run == nil || s.run.question == nil {
		return
	}
	oq := s.run.question
	if oq.timer != timer {
		return
	}
	expired, taken := timer.Tick()
	if !expired {
		if timer.State() == TimerRunning {
			s.broadcastLocked(domain.NotifyTick, "", strconv.Itoa(timer.Remaining()))
		}
		return
	}
	s.closeQuestionLocked(oq, taken)
}

// closeQuestionLocked records the answer for a question whose timer has just been
// claimed, then advances or finishes the attempt.
func (s *Session) closeQuestionLocked(oq *openQuestion, taken int) {
	stopTicker(oq)
	selected, err := oq.view.Translate(oq.selected)
	if err != nil {
		// positions are range-checked on selection
		selected = nil
	}
	rec := NewAnswerRecord(oq.q, selected, taken)
	s.run.answers = append(s.run.answers, rec)

	outcome := Evaluation{
		IsCorrect:          rec.IsCorrect,
		IsPartiallyCorrect: rec.IsPartiallyCorrect,
		WasSkipped:         rec.WasSkipped,
	}.Outcome()
	metrics.AnswersRecorded.WithLabelValues(outcome).Inc()
	metrics.AnswerTime.Observe(float64(taken))
	s.logger.Info("answer recorded",
		zap.String("session", s.id),
		zap.String("question", rec.QuestionID),
		zap.String("outcome", outcome),
		zap.Int("time_taken", taken),
	)

	if s.run.index < len(s.run.doc.Questions)-1 {
		s.run.index++
		s.enterQuestionLocked()
		s.broadcastLocked(domain.NotifyQuestion, fmt.Sprintf("Question %d of %d", s.run.index+1, len(s.run.doc.Questions)), "")
		return
	}

	result := NewQuizResult(s.run.answers, len(s.run.doc.Questions))
	s.run.result = &result
	s.run.review = NewReview(result)
	s.run.question = nil
	_ = s.transitionLocked(EventFinish)
	metrics.SessionsFinished.Inc()
	s.logger.Info("quiz finished",
		zap.String("session", s.id),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
		zap.Float64("percent", result.Percent()),
		zap.String("time", domain.FormatSeconds(result.TotalTimeTaken)),
	)
	s.broadcastLocked(domain.NotifyQuizFinished, "Quiz Finished!",
		fmt.Sprintf("You scored %d out of %d.", result.Score, result.TotalQuestions))
}

func (s *Session) openQuestionLocked() (*openQuestion, error) {
	if s.state != domain.StateActive || s.run == nil || s.run.mode != domain.ModeExam || s.run.question == nil {
		return nil, fmt.Errorf("%w: no exam question is open", domain.ErrInvalidTransition)
	}
	return s.run.question, nil
}

func (s *Session) broadcastLocked(kind domain.NotificationKind, title, message string) {
	n := domain.Notification{SessionID: s.id, Kind: kind, Title: title, Message: message, At: s.now()}
	for ch := range s.subscribers {
		select {
		case ch <- n:
		default:
			// drop the oldest pending notification so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- n
		}
	}
}

// toggle applies checkbox semantics: multi-choice flips membership; single-choice
// clears a repeated pick and otherwise replaces the selection.
func toggle(selected []int, position int, multi bool) []int {
	for i, p := range selected {
		if p == position {
			return append(selected[:i:i], selected[i+1:]...)
		}
	}
	if !multi {
		return []int{position}
	}
	out := append([]int(nil), selected...)
	out = append(out, position)
	sort.Ints(out)
	return out
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

func generationOutcome(kind domain.GenerationErrorKind) string {
	if kind == domain.GenerationEmpty {
		return "empty"
	}
	return "service_error"
}
