package repository

import (
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/pkg/database"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createTopic(t *testing.T, db *gorm.DB, title string) *model.Topic {
	t.Helper()
	topic := &model.Topic{Title: title}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

// createQuestion stores a question whose answers are correct where the
// matching flag is true.
func createQuestion(t *testing.T, db *gorm.DB, qtype model.QuestionType, correct ...bool) *model.Question {
	t.Helper()
	q := &model.Question{Text: "question", Type: qtype}
	for i, c := range correct {
		q.Answers = append(q.Answers, model.Answer{Text: fmt.Sprintf("answer %d", i+1), IsCorrect: c})
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func linkOrders(t *testing.T, repo *TopicRepository, topicID uint) map[uint]uint {
	t.Helper()
	links, err := repo.ListLinks(topicID)
	require.NoError(t, err)
	orders := make(map[uint]uint, len(links))
	for _, l := range links {
		orders[l.QuestionID] = l.Order
	}
	return orders
}
