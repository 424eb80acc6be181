package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/monitoring"
	"quiz_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService drives a user through the active questions of a topic.
// Progress is always derived from the live active sequence and the set of
// questions the attempt has answered; no position is ever stored.
type AttemptService struct {
	TopicRepo    *repository.TopicRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	StatsCache   *repository.StatsCacheRepository

	now func() time.Time
}

func NewAttemptService(
	topicRepo *repository.TopicRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	statsCache *repository.StatsCacheRepository,
) *AttemptService {
	return &AttemptService{
		TopicRepo:    topicRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		StatsCache:   statsCache,
		now:          time.Now,
	}
}

type StartResult struct {
	Attempt    *model.Attempt `json:"attempt"`
	NextNumber int            `json:"nextNumber"`
	Finished   bool           `json:"finished"`
}

type TopicOverview struct {
	Topic       *model.Topic        `json:"topic"`
	ActiveCount int64               `json:"activeCount"`
	Attempt     *model.Attempt      `json:"attempt,omitempty"`
	Stats       *model.AttemptStats `json:"stats,omitempty"`
	NextNumber  int                 `json:"nextNumber"`
}

// AnswerOption is an answer as shown to the user, without its correctness.
type AnswerOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	TopicID    uint               `json:"topicId"`
	Number     int                `json:"number"`
	Total      int64              `json:"total"`
	QuestionID uint               `json:"questionId"`
	Text       string             `json:"text"`
	Type       model.QuestionType `json:"type"`
	Multiple   bool               `json:"multiple"`
	Answers    []AnswerOption     `json:"answers"`
	Selected   []uint             `json:"selected"`
	AttemptID  uint               `json:"attemptId,omitempty"`
	Finished   bool               `json:"finished"`
}

type SubmitResult struct {
	RecordID   uint `json:"recordId"`
	NextNumber int  `json:"nextNumber"`
	Finished   bool `json:"finished"`
}

func (s *AttemptService) topic(id uint) (*model.Topic, error) {
	t, err := s.TopicRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load topic %d: %w", id, err)
	}
	return t, nil
}

// attempt returns the user's attempt on the topic, or nil when there is none.
func (s *AttemptService) attempt(userID, topicID uint) (*model.Attempt, error) {
	a, err := s.AttemptRepo.FindByUserAndTopic(userID, topicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return a, nil
}

// QuestionAt resolves the 1-based position number of the topic's active
// sequence.
func (s *AttemptService) QuestionAt(topicID uint, number int) (*model.Question, error) {
	q, err := s.TopicRepo.QuestionAt(topicID, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load question %d of topic %d: %w", number, topicID, err)
	}
	return q, nil
}

// CurrentStep returns the first active question the attempt has not answered
// yet, or nil when all of them are answered. Answers to questions that are no
// longer active do not count.
func (s *AttemptService) CurrentStep(ctx context.Context, attempt *model.Attempt) (*model.Question, error) {
	questions, err := s.TopicRepo.ActiveQuestions(attempt.TopicID)
	if err != nil {
		return nil, fmt.Errorf("load active questions: %w", err)
	}
	answeredIDs, err := s.AttemptRepo.AnsweredActiveQuestionIDs(attempt)
	if err != nil {
		return nil, fmt.Errorf("load answered questions: %w", err)
	}
	ids := make([]uint, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	if pos := NextPosition(ids, answeredIDs); pos > 0 {
		return &questions[pos-1], nil
	}
	return nil, nil
}

// PositionOf returns the 1-based position of the attempt's current step in
// the active sequence, or 0 when nothing is left to answer. With allowFinish
// an exhausted attempt is finished; finishing happens once and an already
// finished attempt keeps its timestamp.
func (s *AttemptService) PositionOf(ctx context.Context, attempt *model.Attempt, allowFinish bool) (int, error) {
	activeIDs, err := s.TopicRepo.ActiveQuestionIDs(attempt.TopicID)
	if err != nil {
		return 0, fmt.Errorf("load active questions: %w", err)
	}
	answeredIDs, err := s.AttemptRepo.AnsweredActiveQuestionIDs(attempt)
	if err != nil {
		return 0, fmt.Errorf("load answered questions: %w", err)
	}

	pos := NextPosition(activeIDs, answeredIDs)
	if pos != 0 || !allowFinish || attempt.IsFinished() {
		return pos, nil
	}

	finished, err := s.AttemptRepo.Finish(attempt, s.now())
	if err != nil {
		return 0, fmt.Errorf("finish attempt %d: %w", attempt.ID, err)
	}
	if finished {
		monitoring.AttemptsFinished.Inc()
		s.invalidate(ctx, attempt.ID)
		logger.Log.Info("attempt finished",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("topicId", attempt.TopicID),
			zap.Uint("userId", attempt.UserID),
		)
	}
	return 0, nil
}

// StartTopic opens the user's attempt on the topic, or resumes the existing
// one, and returns the position to continue from. An attempt with nothing
// left to answer is finished on the way.
func (s *AttemptService) StartTopic(ctx context.Context, userID, topicID uint) (*StartResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.StartTopic")
	defer span.End()
	span.SetAttributes(attribute.Int64("topic.id", int64(topicID)), attribute.Int64("user.id", int64(userID)))

	if _, err := s.topic(topicID); err != nil {
		return nil, err
	}

	attempt, created, err := s.AttemptRepo.FindOrCreate(userID, topicID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("start attempt: %w", err)
	}
	if created {
		monitoring.AttemptsStarted.Inc()
		logger.Log.Info("attempt started",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("topicId", topicID),
			zap.Uint("userId", userID),
		)
	}

	// a finished attempt takes no more answers, so it has nowhere to go
	if attempt.IsFinished() {
		return &StartResult{Attempt: attempt, Finished: true}, nil
	}

	next, err := s.PositionOf(ctx, attempt, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &StartResult{Attempt: attempt, NextNumber: next, Finished: attempt.IsFinished()}, nil
}

// Overview describes the topic from the user's point of view.
func (s *AttemptService) Overview(ctx context.Context, userID, topicID uint) (*TopicOverview, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.Overview")
	defer span.End()

	t, err := s.topic(topicID)
	if err != nil {
		return nil, err
	}
	count, err := s.TopicRepo.CountActiveQuestions(topicID)
	if err != nil {
		return nil, fmt.Errorf("count active questions: %w", err)
	}
	res := &TopicOverview{Topic: t, ActiveCount: count}

	attempt, err := s.attempt(userID, topicID)
	if err != nil || attempt == nil {
		return res, err
	}
	res.Attempt = attempt

	if res.Stats, err = s.Stats(ctx, attempt); err != nil {
		return nil, err
	}
	if res.NextNumber, err = s.PositionOf(ctx, attempt, false); err != nil {
		return nil, err
	}
	return res, nil
}

// GetQuestion shows the question at position number together with the
// user's current selection for it.
func (s *AttemptService) GetQuestion(ctx context.Context, userID, topicID uint, number int) (*QuestionView, error) {
	_, span := tracing.Tracer.Start(ctx, "AttemptService.GetQuestion")
	defer span.End()

	if _, err := s.topic(topicID); err != nil {
		return nil, err
	}
	q, err := s.QuestionAt(topicID, number)
	if err != nil {
		return nil, err
	}
	total, err := s.TopicRepo.CountActiveQuestions(topicID)
	if err != nil {
		return nil, fmt.Errorf("count active questions: %w", err)
	}

	view := &QuestionView{
		TopicID:    topicID,
		Number:     number,
		Total:      total,
		QuestionID: q.ID,
		Text:       q.Text,
		Type:       q.Type,
		Multiple:   !q.IsSingle(),
		Answers:    make([]AnswerOption, 0, len(q.Answers)),
		Selected:   []uint{},
	}
	for _, a := range q.Answers {
		view.Answers = append(view.Answers, AnswerOption{ID: a.ID, Text: a.Text})
	}

	attempt, err := s.attempt(userID, topicID)
	if err != nil || attempt == nil {
		return view, err
	}
	view.AttemptID = attempt.ID
	view.Finished = attempt.IsFinished()

	rec, err := s.AttemptRepo.FindRecord(attempt.ID, q.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load answer record: %w", err)
	}
	view.Selected = rec.SelectedIDs()
	return view, nil
}

// selection checks answerIDs against the question and returns the chosen
// answers in the order of the question's answers.
func selection(q *model.Question, answerIDs []uint) ([]model.Answer, error) {
	chosen := make(map[uint]struct{}, len(answerIDs))
	for _, id := range answerIDs {
		chosen[id] = struct{}{}
	}
	if len(chosen) == 0 {
		return nil, util.ErrNoAnswerSelected
	}
	if q.IsSingle() && len(chosen) > 1 {
		return nil, util.ErrSingleAnswerOnly
	}

	answers := make([]model.Answer, 0, len(chosen))
	for _, a := range q.Answers {
		if _, ok := chosen[a.ID]; ok {
			answers = append(answers, a)
		}
	}
	if len(answers) != len(chosen) {
		return nil, util.ErrInvalidAnswer
	}
	return answers, nil
}

// SubmitAnswer records the user's selection for the question at position
// number, replacing an earlier selection for the same question, and returns
// where to go next. When nothing is left to answer the attempt is finished
// and NextNumber is 0.
func (s *AttemptService) SubmitAnswer(ctx context.Context, userID, topicID uint, number int, answerIDs []uint) (*SubmitResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.SubmitAnswer")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("topic.id", int64(topicID)),
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("question.number", number),
	)

	if _, err := s.topic(topicID); err != nil {
		return nil, err
	}
	q, err := s.QuestionAt(topicID, number)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attempt(userID, topicID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, util.ErrAttemptNotStarted
	}
	if attempt.IsFinished() {
		return nil, util.ErrAttemptFinished
	}

	answers, err := selection(q, answerIDs)
	if err != nil {
		return nil, err
	}

	rec, err := s.AttemptRepo.SaveRecord(attempt.ID, q.ID, answers)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save answer record: %w", err)
	}
	monitoring.AnswersRecorded.WithLabelValues(q.Type.String()).Inc()
	s.invalidate(ctx, attempt.ID)
	logger.Log.Debug("answer recorded",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("questionId", q.ID),
		zap.Int("selected", len(answers)),
	)

	next, err := s.PositionOf(ctx, attempt, true)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{RecordID: rec.ID, NextNumber: next, Finished: attempt.IsFinished()}, nil
}

// Stats scores the attempt over its answers to currently active questions.
// Results are cached per attempt until an answer, a finish or a change to the
// topic's links invalidates them.
func (s *AttemptService) Stats(ctx context.Context, attempt *model.Attempt) (*model.AttemptStats, error) {
	if cached, ok := s.StatsCache.Get(ctx, attempt.ID); ok && cached.Finished == attempt.IsFinished() {
		return cached, nil
	}

	records, err := s.AttemptRepo.ActiveRecords(attempt)
	if err != nil {
		return nil, fmt.Errorf("load answer records: %w", err)
	}
	questionIDs := make([]uint, len(records))
	for i := range records {
		questionIDs[i] = records[i].QuestionID
	}
	correct, err := s.QuestionRepo.CorrectAnswerIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load correct answers: %w", err)
	}

	var activeCount int64
	if !attempt.IsFinished() {
		if activeCount, err = s.TopicRepo.CountActiveQuestions(attempt.TopicID); err != nil {
			return nil, fmt.Errorf("count active questions: %w", err)
		}
	}

	stats := ScoreAttempt(attempt.ID, records, correct, attempt.IsFinished(), int(activeCount))
	if err := s.StatsCache.Set(ctx, attempt.TopicID, &stats); err != nil {
		logger.Log.Warn("cache attempt stats", zap.Uint("attemptId", attempt.ID), zap.Error(err))
	}
	return &stats, nil
}

func (s *AttemptService) invalidate(ctx context.Context, attemptID uint) {
	if err := s.StatsCache.Invalidate(ctx, attemptID); err != nil {
		logger.Log.Warn("invalidate attempt stats", zap.Uint("attemptId", attemptID), zap.Error(err))
	}
}
