package service

import (
	"context"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTopicWithoutAnswers(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	res, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NextNumber)
	assert.False(t, res.Finished)

	step, err := env.attempts.CurrentStep(ctx, res.Attempt)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, z.q[0].ID, step.ID)

	pos, err := env.attempts.PositionOf(ctx, res.Attempt, true)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.False(t, res.Attempt.IsFinished())

	again, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Attempt.ID, again.Attempt.ID)
}

func TestStartTopicNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "a@example.com")

	_, err := env.attempts.StartTopic(context.Background(), user.ID, 42)
	assert.ErrorIs(t, err, util.ErrTopicNotFound)
}

func TestFullAttemptScoring(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	_, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)

	res, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(z.q[0], true))
	require.NoError(t, err)
	assert.Equal(t, 2, res.NextNumber)
	assert.False(t, res.Finished)

	res, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 2, answerIDs(z.q[1], true))
	require.NoError(t, err)
	assert.Equal(t, 3, res.NextNumber)

	res, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 3, answerIDs(z.q[2], false))
	require.NoError(t, err)
	assert.Equal(t, 0, res.NextNumber)
	assert.True(t, res.Finished)

	overview, err := env.attempts.Overview(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	require.NotNil(t, overview.Attempt)
	assert.True(t, overview.Attempt.IsFinished())
	assert.Equal(t, 0, overview.NextNumber)

	stats := overview.Stats
	require.NotNil(t, stats)
	assert.True(t, stats.Finished)
	assert.Equal(t, 3, stats.Answered)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, 1, stats.Incorrect)
	assert.Equal(t, 3, stats.Total)
	assert.InDelta(t, 66.67, stats.CorrectRatio, 0.01)
}

func TestFinishedAttemptKeepsTimestamp(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	start, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	attempt := start.Attempt

	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	env.attempts.now = func() time.Time { return t0 }
	for i, q := range z.q {
		_, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, i+1, answerIDs(q, true)[:1])
		require.NoError(t, err)
	}

	env.attempts.now = func() time.Time { return t0.Add(time.Hour) }
	reloaded, err := env.attempts.AttemptRepo.FindByID(attempt.ID)
	require.NoError(t, err)
	pos, err := env.attempts.PositionOf(ctx, reloaded, true)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	stored, err := env.attempts.AttemptRepo.FindByID(attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FinishedAt)
	assert.True(t, stored.FinishedAt.Equal(t0))

	_, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(z.q[0], true))
	assert.ErrorIs(t, err, util.ErrAttemptFinished)

	again, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	assert.True(t, again.Finished)
	assert.Equal(t, 0, again.NextNumber)
}

func TestPositionWithoutFinishHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	attempt, _, err := env.attempts.AttemptRepo.FindOrCreate(user.ID, z.topic.ID)
	require.NoError(t, err)
	for _, q := range z.q {
		_, err := env.attempts.AttemptRepo.SaveRecord(attempt.ID, q.ID, q.Answers[:1])
		require.NoError(t, err)
	}

	pos, err := env.attempts.PositionOf(ctx, attempt, false)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	stored, err := env.attempts.AttemptRepo.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsFinished())
}

func TestResubmitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	start, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)

	first, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 2, answerIDs(z.q[1], true))
	require.NoError(t, err)
	second, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 2, answerIDs(z.q[1], true))
	require.NoError(t, err)
	assert.Equal(t, first.RecordID, second.RecordID)
	assert.Equal(t, 1, second.NextNumber)

	var count int64
	require.NoError(t, env.db.Model(&model.AnswerRecord{}).
		Where("attempt_id = ? AND question_id = ?", start.Attempt.ID, z.q[1].ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stats, err := env.attempts.Stats(ctx, start.Attempt)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Answered)
	assert.Equal(t, 1, stats.Correct)
	assert.Equal(t, 3, stats.Total)

	// a new selection replaces the old one
	_, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 2, answerIDs(z.q[1], true)[:1])
	require.NoError(t, err)
	view, err := env.attempts.GetQuestion(ctx, user.ID, z.topic.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, answerIDs(z.q[1], true)[:1], view.Selected)

	stats, err = env.attempts.Stats(ctx, start.Attempt)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Correct)
	assert.Equal(t, 1, stats.Incorrect)
}

func TestDeactivatedQuestionIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	start, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	_, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(z.q[0], true))
	require.NoError(t, err)

	env.link(t, z.topic.ID, z.q[0].ID, 1, false)

	stats, err := env.attempts.Stats(ctx, start.Attempt)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Answered)
	assert.Equal(t, 2, stats.Total)

	step, err := env.attempts.CurrentStep(ctx, start.Attempt)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, z.q[1].ID, step.ID)

	pos, err := env.attempts.PositionOf(ctx, start.Attempt, true)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	view, err := env.attempts.GetQuestion(ctx, user.ID, z.topic.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, z.q[1].ID, view.QuestionID)
	assert.Equal(t, int64(2), view.Total)
}

func TestQuestionActivatedMidAttempt(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	_, err := env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	_, err = env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(z.q[0], true))
	require.NoError(t, err)

	// a new first question pushes the others down
	extra := env.question(t, model.QuestionSingle, true, false)
	env.link(t, z.topic.ID, extra.ID, 1, true)

	overview, err := env.attempts.Overview(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), overview.ActiveCount)
	assert.Equal(t, 1, overview.NextNumber)
	assert.Equal(t, 4, overview.Stats.Total)

	res, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(extra, true))
	require.NoError(t, err)
	assert.Equal(t, 3, res.NextNumber)
}

func TestSubmitAnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	other := env.question(t, model.QuestionSingle, true, false)
	user := env.user(t, "a@example.com")
	ctx := context.Background()

	_, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, answerIDs(z.q[0], true))
	assert.ErrorIs(t, err, util.ErrAttemptNotStarted)

	_, err = env.attempts.StartTopic(ctx, user.ID, z.topic.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		number  int
		answers []uint
		want    error
	}{
		{"nothing selected", 1, nil, util.ErrNoAnswerSelected},
		{"two on single", 1, []uint{z.q[0].Answers[0].ID, z.q[0].Answers[1].ID}, util.ErrSingleAnswerOnly},
		{"foreign answer", 1, []uint{other.Answers[0].ID}, util.ErrInvalidAnswer},
		{"foreign answer on multi", 2, []uint{z.q[1].Answers[0].ID, other.Answers[0].ID}, util.ErrInvalidAnswer},
		{"position zero", 0, []uint{z.q[0].Answers[0].ID}, util.ErrQuestionNotFound},
		{"past the end", 4, []uint{z.q[0].Answers[0].ID}, util.ErrQuestionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, tt.number, tt.answers)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, util.IsValidationError(err) == (tt.want != util.ErrQuestionNotFound))
		})
	}

	// duplicated ids collapse to one selection
	dup := z.q[0].Answers[0].ID
	res, err := env.attempts.SubmitAnswer(ctx, user.ID, z.topic.ID, 1, []uint{dup, dup})
	require.NoError(t, err)
	assert.Equal(t, 2, res.NextNumber)

	var count int64
	require.NoError(t, env.db.Model(&model.AnswerRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetQuestionHidesCorrectness(t *testing.T) {
	env := newTestEnv(t)
	z := env.quiz(t)
	user := env.user(t, "a@example.com")

	view, err := env.attempts.GetQuestion(context.Background(), user.ID, z.topic.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, z.q[1].ID, view.QuestionID)
	assert.True(t, view.Multiple)
	assert.Len(t, view.Answers, 3)
	assert.Empty(t, view.Selected)
	assert.Zero(t, view.AttemptID)
	assert.Equal(t, int64(3), view.Total)
}
