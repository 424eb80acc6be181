package model

// AttemptStats is the score of an attempt computed over its answers to
// currently active questions.
type AttemptStats struct {
	AttemptID      uint    `json:"attemptId"`
	Finished       bool    `json:"finished"`
	Answered       int     `json:"answered"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Total          int     `json:"total"`
	CorrectRatio   float64 `json:"correctRatio"`
	IncorrectRatio float64 `json:"incorrectRatio"`
	AnsweredRatio  float64 `json:"answeredRatio"`
}
