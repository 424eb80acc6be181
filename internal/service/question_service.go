package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	TopicRepo    *repository.TopicRepository
	StatsCache   *repository.StatsCacheRepository
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	topicRepo *repository.TopicRepository,
	statsCache *repository.StatsCacheRepository,
) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		TopicRepo:    topicRepo,
		StatsCache:   statsCache,
	}
}

type AnswerInput struct {
	ID        uint   `json:"id"`
	Text      string `json:"text" binding:"required,max=255"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text    string             `json:"text" binding:"required"`
	Type    model.QuestionType `json:"type" binding:"required"`
	Answers []AnswerInput      `json:"answers" binding:"required,dive"`
}

// Validate applies the answer set rules: at least one answer, at least one
// correct answer but not all of them, and exactly one correct answer for a
// single choice question.
func (in QuestionInput) Validate() error {
	if !in.Type.Valid() {
		return util.ErrInvalidQuestionType
	}
	if len(in.Answers) == 0 {
		return util.ErrNoAnswers
	}
	correct := 0
	for _, a := range in.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	switch {
	case correct == 0:
		return util.ErrNoCorrectAnswer
	case in.Type == model.QuestionSingle && correct > 1:
		return util.ErrTooManyCorrect
	case correct == len(in.Answers):
		return util.ErrAllAnswersCorrect
	}
	return nil
}

func (in QuestionInput) answers() []model.Answer {
	answers := make([]model.Answer, len(in.Answers))
	for i, a := range in.Answers {
		answers[i] = model.Answer{Text: a.Text, IsCorrect: a.IsCorrect}
		answers[i].ID = a.ID
	}
	return answers
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) ListQuestions(search string, qtype model.QuestionType, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.List(search, qtype, page, limit)
}

func (s *QuestionService) CreateQuestion(in QuestionInput) (*model.Question, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	answers := in.answers()
	for i := range answers {
		answers[i].ID = 0
	}
	q := &model.Question{Text: in.Text, Type: in.Type, Answers: answers}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// UpdateQuestion rewrites the question and its answers. Answers sent with an
// id keep it; answers left out are removed. Cached statistics of every topic
// using the question are dropped since correctness may have changed.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, in QuestionInput) (*model.Question, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	q, err := s.GetQuestion(id)
	if err != nil {
		return nil, err
	}

	listed := make(map[uint]bool, len(in.Answers))
	for _, a := range in.Answers {
		listed[a.ID] = true
	}
	var removed []uint
	for _, a := range q.Answers {
		if !listed[a.ID] {
			removed = append(removed, a.ID)
		}
	}
	selected, err := s.QuestionRepo.SelectedAnswerCount(removed)
	if err != nil {
		return nil, fmt.Errorf("check answer records: %w", err)
	}
	if selected > 0 {
		return nil, util.ErrAnswerInUse
	}

	q.Text = in.Text
	q.Type = in.Type
	if err := s.QuestionRepo.Update(q, in.answers()); err != nil {
		return nil, fmt.Errorf("update question %d: %w", id, err)
	}
	s.invalidateTopicsOf(ctx, id)
	return q, nil
}

// DeleteQuestion removes a question no attempt has answered, unlinking it
// from its topics.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	if _, err := s.GetQuestion(id); err != nil {
		return err
	}
	answered, err := s.QuestionRepo.IsAnswered(id)
	if err != nil {
		return fmt.Errorf("check question answers: %w", err)
	}
	if answered {
		return util.ErrQuestionInUse
	}
	s.invalidateTopicsOf(ctx, id)
	if err := s.QuestionRepo.Delete(id); err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	return nil
}

func (s *QuestionService) invalidateTopicsOf(ctx context.Context, questionID uint) {
	topicIDs, err := s.TopicRepo.TopicIDsForQuestion(questionID)
	if err != nil {
		logger.Log.Warn("list topics of question", zap.Uint("questionId", questionID), zap.Error(err))
		return
	}
	for _, id := range topicIDs {
		if err := s.StatsCache.InvalidateTopic(ctx, id); err != nil {
			logger.Log.Warn("invalidate topic stats", zap.Uint("topicId", id), zap.Error(err))
		}
	}
}
