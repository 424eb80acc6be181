package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Seed is the layout of a fixture file loaded with -seed.
type Seed struct {
	Users  []SeedUser  `yaml:"users"`
	Topics []SeedTopic `yaml:"topics"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SeedTopic struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Questions   []SeedQuestion `yaml:"questions"`
}

type SeedQuestion struct {
	Text    string       `yaml:"text"`
	Type    string       `yaml:"type"` // single or multi
	Order   uint         `yaml:"order"`
	Active  *bool        `yaml:"active"`
	Answers []SeedAnswer `yaml:"answers"`
}

type SeedAnswer struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

type ImportReport struct {
	Users         int
	Topics        int
	SkippedTopics int
	Questions     int
}

// ImportService writes fixture data through the regular services, so links
// go through the ordering rules and questions through answer validation.
type ImportService struct {
	AuthService     *AuthService
	TopicService    *TopicService
	QuestionService *QuestionService
}

func NewImportService(authService *AuthService, topicService *TopicService, questionService *QuestionService) *ImportService {
	return &ImportService{
		AuthService:     authService,
		TopicService:    topicService,
		QuestionService: questionService,
	}
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

func (s *ImportService) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, seed)
}

// Import loads users and topics. Users whose email is taken and topics whose
// title already exists are skipped, so a fixture can be applied twice.
func (s *ImportService) Import(ctx context.Context, seed *Seed) (*ImportReport, error) {
	report := &ImportReport{}

	for _, u := range seed.Users {
		user := &model.User{Name: u.Name, Email: u.Email, Password: u.Password, Role: model.UserRole(u.Role)}
		err := s.AuthService.Register(user)
		if errors.Is(err, util.ErrEmailRegistered) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		report.Users++
	}

	for _, st := range seed.Topics {
		_, err := s.TopicService.TopicRepo.FindByTitle(st.Title)
		if err == nil {
			report.SkippedTopics++
			logger.Log.Info("seed topic exists, skipping", zap.String("title", st.Title))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return report, fmt.Errorf("seed topic %q: %w", st.Title, err)
		}

		topic, err := s.TopicService.CreateTopic(TopicInput{Title: st.Title, Description: st.Description})
		if err != nil {
			return report, err
		}
		report.Topics++

		for i, sq := range st.Questions {
			in, err := sq.input()
			if err != nil {
				return report, fmt.Errorf("seed topic %q question %d: %w", st.Title, i+1, err)
			}
			q, err := s.QuestionService.CreateQuestion(in)
			if err != nil {
				return report, fmt.Errorf("seed topic %q question %d: %w", st.Title, i+1, err)
			}
			order := sq.Order
			if order == 0 {
				order = uint(i + 1)
			}
			active := sq.Active == nil || *sq.Active
			if _, err := s.TopicService.SetLink(ctx, topic.ID, q.ID, LinkInput{Order: order, Active: active}); err != nil {
				return report, err
			}
			report.Questions++
		}
	}
	return report, nil
}

func (sq SeedQuestion) input() (QuestionInput, error) {
	in := QuestionInput{Text: sq.Text}
	switch sq.Type {
	case "", "single":
		in.Type = model.QuestionSingle
	case "multi":
		in.Type = model.QuestionMulti
	default:
		return in, util.ErrInvalidQuestionType
	}
	for _, a := range sq.Answers {
		in.Answers = append(in.Answers, AnswerInput{Text: a.Text, IsCorrect: a.Correct})
	}
	return in, nil
}
