package repository

import (
	"errors"
	"quiz_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, repo *UserRepository, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "user", Email: email, Password: "x", Role: model.Student}
	require.NoError(t, repo.Create(u))
	return u
}

func TestFindOrCreateAttempt(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)
	user := createUser(t, NewUserRepository(db), "a@example.com")
	topic := createTopic(t, db, "go")

	first, created, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, first.IsFinished())

	again, created, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}

func TestFinishOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)
	user := createUser(t, NewUserRepository(db), "a@example.com")
	topic := createTopic(t, db, "go")

	attempt, _, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)

	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	finished, err := repo.Finish(attempt, t0)
	require.NoError(t, err)
	assert.True(t, finished)

	stale := &model.Attempt{}
	stale.ID = attempt.ID
	finished, err = repo.Finish(stale, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, finished)
	require.NotNil(t, stale.FinishedAt)
	assert.True(t, stale.FinishedAt.Equal(t0))

	stored, err := repo.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.True(t, stored.FinishedAt.Equal(t0))
}

func TestSaveRecordReplacesSelection(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)
	user := createUser(t, NewUserRepository(db), "a@example.com")
	topic := createTopic(t, db, "go")
	q := createQuestion(t, db, model.QuestionMulti, true, true, false)

	attempt, _, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)

	first, err := repo.SaveRecord(attempt.ID, q.ID, q.Answers[:2])
	require.NoError(t, err)
	again, err := repo.SaveRecord(attempt.ID, q.ID, q.Answers[:2])
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = repo.SaveRecord(attempt.ID, q.ID, q.Answers[2:])
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.AnswerRecord{}).Where("attempt_id = ?", attempt.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	rec, err := repo.FindRecord(attempt.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{q.Answers[2].ID}, rec.SelectedIDs())
}

func TestSaveRecordRecoversFromConcurrentInsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)
	user := createUser(t, NewUserRepository(db), "a@example.com")
	topic := createTopic(t, db, "go")
	q := createQuestion(t, db, model.QuestionMulti, true, true, false)

	attempt, _, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)

	// A competing submission stores the record right after the first lookup
	// misses, so the insert that follows hits the unique index.
	var rival model.AnswerRecord
	inserted := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:competing_insert", func(d *gorm.DB) {
		if inserted || d.Statement.Table != "answer_records" || !errors.Is(d.Error, gorm.ErrRecordNotFound) {
			return
		}
		inserted = true
		s := d.Session(&gorm.Session{NewDB: true})
		rival = model.AnswerRecord{AttemptID: attempt.ID, QuestionID: q.ID}
		require.NoError(t, s.Omit("Answers").Create(&rival).Error)
		require.NoError(t, s.Exec("INSERT INTO answer_record_answers (answer_record_id, answer_id) VALUES (?, ?)", rival.ID, q.Answers[0].ID).Error)
	}))

	rec, err := repo.SaveRecord(attempt.ID, q.ID, q.Answers[1:3])
	require.NoError(t, err)
	require.True(t, inserted)
	assert.Equal(t, rival.ID, rec.ID)

	var count int64
	require.NoError(t, db.Model(&model.AnswerRecord{}).Where("attempt_id = ? AND question_id = ?", attempt.ID, q.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindRecord(attempt.ID, q.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{q.Answers[1].ID, q.Answers[2].ID}, stored.SelectedIDs())
}

func TestActiveRecordsFollowLinks(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttemptRepository(db)
	topics := NewTopicRepository(db)
	user := createUser(t, NewUserRepository(db), "a@example.com")
	topic := createTopic(t, db, "go")
	q1 := createQuestion(t, db, model.QuestionSingle, true, false)
	q2 := createQuestion(t, db, model.QuestionSingle, true, false)

	_, _, err := topics.UpsertLink(topic.ID, q1.ID, 1, true)
	require.NoError(t, err)
	_, _, err = topics.UpsertLink(topic.ID, q2.ID, 2, true)
	require.NoError(t, err)

	attempt, _, err := repo.FindOrCreate(user.ID, topic.ID)
	require.NoError(t, err)
	_, err = repo.SaveRecord(attempt.ID, q1.ID, q1.Answers[:1])
	require.NoError(t, err)
	_, err = repo.SaveRecord(attempt.ID, q2.ID, q2.Answers[1:])
	require.NoError(t, err)

	ids, err := repo.AnsweredActiveQuestionIDs(attempt)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{q1.ID, q2.ID}, ids)

	_, _, err = topics.UpsertLink(topic.ID, q1.ID, 1, false)
	require.NoError(t, err)

	records, err := repo.ActiveRecords(attempt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, q2.ID, records[0].QuestionID)
	assert.Equal(t, []uint{q2.Answers[1].ID}, records[0].SelectedIDs())
}
