package service

import (
	"context"
	"fmt"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/pkg/database"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	auth      *AuthService
	questions *QuestionService
	topics    *TopicService
	attempts  *AttemptService
	importer  *ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, repository.NewStatsCacheRepository(nil, 0))
}

func newTestEnvWithCache(t *testing.T, cache *repository.StatsCacheRepository) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	env := &testEnv{db: db}
	env.auth = NewAuthService(userRepo, cfg)
	env.questions = NewQuestionService(questionRepo, topicRepo, cache)
	env.topics = NewTopicService(topicRepo, questionRepo, attemptRepo, cache)
	env.attempts = NewAttemptService(topicRepo, questionRepo, attemptRepo, cache)
	env.importer = NewImportService(env.auth, env.topics, env.questions)
	return env
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "user", Email: email, Password: "password123"}
	require.NoError(t, e.auth.Register(u))
	return u
}

// question creates a question whose answers are correct where the matching
// flag is true.
func (e *testEnv) question(t *testing.T, qtype model.QuestionType, correct ...bool) *model.Question {
	t.Helper()
	in := QuestionInput{Text: "question", Type: qtype}
	for i, c := range correct {
		in.Answers = append(in.Answers, AnswerInput{Text: fmt.Sprintf("answer %d", i+1), IsCorrect: c})
	}
	q, err := e.questions.CreateQuestion(in)
	require.NoError(t, err)
	return q
}

func (e *testEnv) link(t *testing.T, topicID, questionID, order uint, active bool) {
	t.Helper()
	_, err := e.topics.SetLink(context.Background(), topicID, questionID, LinkInput{Order: order, Active: active})
	require.NoError(t, err)
}

// quizFixture is a topic with three active questions: single, multi, single.
type quizFixture struct {
	topic *model.Topic
	q     [3]*model.Question
}

func (e *testEnv) quiz(t *testing.T) *quizFixture {
	t.Helper()
	topic, err := e.topics.CreateTopic(TopicInput{Title: "go basics"})
	require.NoError(t, err)

	z := &quizFixture{topic: topic}
	z.q[0] = e.question(t, model.QuestionSingle, true, false, false)
	z.q[1] = e.question(t, model.QuestionMulti, true, true, false)
	z.q[2] = e.question(t, model.QuestionSingle, false, true)
	for i, q := range z.q {
		e.link(t, topic.ID, q.ID, uint(i+1), true)
	}
	return z
}

func answerIDs(q *model.Question, correct bool) []uint {
	var ids []uint
	for _, a := range q.Answers {
		if a.IsCorrect == correct {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
