package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrInvalidLogin     = errors.New("invalid credentials")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")

	ErrTopicNotFound    = errors.New("topic not found")
	ErrTopicInUse       = errors.New("topic has attempts and cannot be deleted")
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionInUse    = errors.New("question is answered in attempts and cannot be deleted")
	ErrLinkNotFound     = errors.New("question is not linked to topic")
	ErrAnswerInUse      = errors.New("answer is selected in attempts and cannot be removed")

	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptNotStarted = errors.New("topic has not been started")
	ErrAttemptFinished   = errors.New("attempt already finished")

	ErrNoAnswerSelected = errors.New("at least one answer should be selected")
	ErrSingleAnswerOnly = errors.New("only one answer can be selected for this question")
	ErrInvalidAnswer    = errors.New("selected answer does not belong to the question")

	ErrNoAnswers           = errors.New("question needs at least one answer")
	ErrNoCorrectAnswer     = errors.New("please choose correct answer")
	ErrTooManyCorrect      = errors.New("only one correct answer is allowed for this question type")
	ErrAllAnswersCorrect   = errors.New("all answers cannot be correct")
	ErrInvalidQuestionType = errors.New("invalid question type")
)

// IsValidationError reports whether err is caused by user input rather than
// by the server.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrNoAnswerSelected, ErrSingleAnswerOnly, ErrInvalidAnswer,
		ErrNoAnswers, ErrNoCorrectAnswer, ErrTooManyCorrect, ErrAllAnswersCorrect, ErrInvalidQuestionType,
		ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
