package model

import "time"

// Attempt is one user's pass through a topic. FinishedAt is written once.
// swagger:model Attempt
type Attempt struct {
	BaseModel
	TopicID    uint       `gorm:"index;not null" json:"topicId"`
	UserID     uint       `gorm:"index;not null" json:"userId"`
	Result     uint       `gorm:"not null;default:0" json:"result"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Topic      *Topic     `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) IsFinished() bool {
	return a.FinishedAt != nil
}

// AnswerRecord holds the answers chosen for one question within one attempt.
type AnswerRecord struct {
	Row
	AttemptID  uint     `gorm:"not null;uniqueIndex:idx_answer_records_attempt_question" json:"attemptId"`
	QuestionID uint     `gorm:"not null;uniqueIndex:idx_answer_records_attempt_question" json:"questionId"`
	Answers    []Answer `gorm:"many2many:answer_record_answers;" json:"answers"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

// SelectedIDs returns the ids of the chosen answers.
func (r *AnswerRecord) SelectedIDs() []uint {
	ids := make([]uint, 0, len(r.Answers))
	for _, a := range r.Answers {
		ids = append(ids, a.ID)
	}
	return ids
}
