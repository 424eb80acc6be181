package service

import (
	"quiz_backend/internal/model"
)

// NextPosition returns the 1-based position in activeIDs of the first question
// not listed in answeredIDs, or 0 when every active question is answered.
// activeIDs must be the live active sequence; nothing about an attempt's
// progress is stored besides the set of answered questions.
func NextPosition(activeIDs, answeredIDs []uint) int {
	answered := make(map[uint]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}
	for i, id := range activeIDs {
		if _, ok := answered[id]; !ok {
			return i + 1
		}
	}
	return 0
}

// SameAnswerSet reports whether selected and correct hold the same ids.
// Duplicates are ignored.
func SameAnswerSet(selected, correct []uint) bool {
	want := make(map[uint]struct{}, len(correct))
	for _, id := range correct {
		want[id] = struct{}{}
	}
	got := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := want[id]; !ok {
			return false
		}
		got[id] = struct{}{}
	}
	return len(got) == len(want)
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// ScoreAttempt scores the records of an attempt. records must already be
// limited to questions active in the attempt's topic; correct maps question
// ids to their correct answer ids. A question counts as correct only when the
// selection equals its correct set exactly.
//
// A finished attempt is scored against what it answered, so questions
// activated later never lower its completion; an attempt in progress is
// scored against activeCount.
func ScoreAttempt(attemptID uint, records []model.AnswerRecord, correct map[uint][]uint, finished bool, activeCount int) model.AttemptStats {
	stats := model.AttemptStats{
		AttemptID: attemptID,
		Finished:  finished,
		Answered:  len(records),
	}
	for i := range records {
		if SameAnswerSet(records[i].SelectedIDs(), correct[records[i].QuestionID]) {
			stats.Correct++
		}
	}
	stats.Incorrect = stats.Answered - stats.Correct

	if finished {
		stats.Total = stats.Answered
	} else {
		stats.Total = activeCount
	}

	stats.CorrectRatio = percent(stats.Correct, stats.Answered)
	stats.IncorrectRatio = percent(stats.Incorrect, stats.Answered)
	stats.AnsweredRatio = percent(stats.Answered, stats.Total)
	return stats
}
