package model

type QuestionType int

const (
	QuestionSingle QuestionType = 1 // radio: exactly one answer is chosen
	QuestionMulti  QuestionType = 2 // checkbox: one or more answers are chosen
)

func (t QuestionType) Valid() bool {
	return t == QuestionSingle || t == QuestionMulti
}

func (t QuestionType) String() string {
	switch t {
	case QuestionSingle:
		return "single"
	case QuestionMulti:
		return "multi"
	}
	return "unknown"
}

// swagger:model Question
type Question struct {
	BaseModel
	Text    string       `gorm:"type:text;not null" json:"text"`
	Type    QuestionType `gorm:"not null;default:1;index" json:"type"`
	Answers []Answer     `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) IsSingle() bool {
	return q.Type == QuestionSingle
}

// swagger:model Answer
type Answer struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}
