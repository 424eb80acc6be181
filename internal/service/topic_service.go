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

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TopicService manages topics and the ordered links between topics and
// questions.
type TopicService struct {
	TopicRepo    *repository.TopicRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	StatsCache   *repository.StatsCacheRepository
}

func NewTopicService(
	topicRepo *repository.TopicRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	statsCache *repository.StatsCacheRepository,
) *TopicService {
	return &TopicService{
		TopicRepo:    topicRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		StatsCache:   statsCache,
	}
}

type TopicInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

type LinkInput struct {
	Order  uint `json:"order"`
	Active bool `json:"active"`
}

func (s *TopicService) ListTopics(page, limit int) ([]model.Topic, int64, error) {
	return s.TopicRepo.List(page, limit)
}

func (s *TopicService) GetTopic(id uint) (*model.Topic, error) {
	t, err := s.TopicRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	return t, err
}

func (s *TopicService) CreateTopic(in TopicInput) (*model.Topic, error) {
	t := &model.Topic{Title: in.Title, Description: in.Description}
	if err := s.TopicRepo.Create(t); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return t, nil
}

func (s *TopicService) UpdateTopic(id uint, in TopicInput) (*model.Topic, error) {
	t, err := s.GetTopic(id)
	if err != nil {
		return nil, err
	}
	t.Title = in.Title
	t.Description = in.Description
	if err := s.TopicRepo.Update(t); err != nil {
		return nil, fmt.Errorf("update topic %d: %w", id, err)
	}
	return t, nil
}

// DeleteTopic removes a topic nobody has attempted yet.
func (s *TopicService) DeleteTopic(ctx context.Context, id uint) error {
	if _, err := s.GetTopic(id); err != nil {
		return err
	}
	used, err := s.TopicRepo.HasAttempts(id)
	if err != nil {
		return fmt.Errorf("check topic attempts: %w", err)
	}
	if used {
		return util.ErrTopicInUse
	}
	if err := s.TopicRepo.Delete(id); err != nil {
		return fmt.Errorf("delete topic %d: %w", id, err)
	}
	s.invalidateTopic(ctx, id)
	return nil
}

func (s *TopicService) ListLinks(topicID uint) ([]model.TopicLink, error) {
	if _, err := s.GetTopic(topicID); err != nil {
		return nil, err
	}
	return s.TopicRepo.ListLinks(topicID)
}

// SetLink places the question in the topic at the given order, or moves it
// there when it is already linked. Links sitting at or after a taken order
// are shifted down to make room.
func (s *TopicService) SetLink(ctx context.Context, topicID, questionID uint, in LinkInput) (*model.TopicLink, error) {
	ctx, span := tracing.Tracer.Start(ctx, "TopicService.SetLink")
	defer span.End()
	span.SetAttributes(attribute.Int64("topic.id", int64(topicID)), attribute.Int64("question.id", int64(questionID)))

	if _, err := s.GetTopic(topicID); err != nil {
		return nil, err
	}
	if _, err := s.QuestionRepo.FindByID(questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question %d: %w", questionID, err)
	}

	link, shifted, err := s.TopicRepo.UpsertLink(topicID, questionID, in.Order, in.Active)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save link: %w", err)
	}
	if shifted {
		monitoring.LinkRenumbers.Inc()
		logger.Log.Info("topic links shifted",
			zap.Uint("topicId", topicID),
			zap.Uint("questionId", questionID),
			zap.Uint("order", in.Order),
		)
	}
	s.invalidateTopic(ctx, topicID)
	return link, nil
}

func (s *TopicService) RemoveLink(ctx context.Context, topicID, questionID uint) error {
	if _, err := s.GetTopic(topicID); err != nil {
		return err
	}
	removed, err := s.TopicRepo.DeleteLink(topicID, questionID)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if !removed {
		return util.ErrLinkNotFound
	}
	s.invalidateTopic(ctx, topicID)
	return nil
}

// ListAttempts lists attempts newest first; topicID 0 lists every topic.
func (s *TopicService) ListAttempts(topicID uint, page, limit int) ([]model.Attempt, int64, error) {
	return s.AttemptRepo.List(topicID, page, limit)
}

func (s *TopicService) invalidateTopic(ctx context.Context, topicID uint) {
	if err := s.StatsCache.InvalidateTopic(ctx, topicID); err != nil {
		logger.Log.Warn("invalidate topic stats", zap.Uint("topicId", topicID), zap.Error(err))
	}
}
