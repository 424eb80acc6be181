package repository

import (
	"errors"
	"quiz_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByUserAndTopic returns the oldest attempt of the user on the topic.
func (r *AttemptRepository) FindByUserAndTopic(userID, topicID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).Order("id asc").First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOrCreate returns the user's attempt on the topic, creating it when the
// user has none yet. created reports which of the two happened.
func (r *AttemptRepository) FindOrCreate(userID, topicID uint) (attempt *model.Attempt, created bool, err error) {
	attempt, err = r.FindByUserAndTopic(userID, topicID)
	if err == nil {
		return attempt, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	attempt = &model.Attempt{UserID: userID, TopicID: topicID}
	if err := r.DB.Create(attempt).Error; err != nil {
		return nil, false, err
	}
	return attempt, true, nil
}

// Finish stamps finishedAt on an unfinished attempt. It reports false when
// the attempt had already been finished, leaving the first timestamp intact.
func (r *AttemptRepository) Finish(attempt *model.Attempt, finishedAt time.Time) (bool, error) {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND finished_at IS NULL", attempt.ID).
		Update("finished_at", finishedAt)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		fresh, err := r.FindByID(attempt.ID)
		if err != nil {
			return false, err
		}
		attempt.FinishedAt = fresh.FinishedAt
		return false, nil
	}
	attempt.FinishedAt = &finishedAt
	return true, nil
}

func (r *AttemptRepository) List(topicID uint, page, limit int) ([]model.Attempt, int64, error) {
	var as []model.Attempt
	var total int64
	query := r.DB.Model(&model.Attempt{})
	if topicID > 0 {
		query = query.Where("topic_id = ?", topicID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Topic").Preload("User").
		Order("id desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AttemptRepository) activeRecords(attempt *model.Attempt) *gorm.DB {
	return r.DB.Model(&model.AnswerRecord{}).
		Joins("JOIN topic_links ON topic_links.question_id = answer_records.question_id AND topic_links.topic_id = ? AND topic_links.active = ?", attempt.TopicID, true).
		Where("answer_records.attempt_id = ?", attempt.ID)
}

// ActiveRecords returns the attempt's answer records for questions that are
// currently active in its topic, with the chosen answers loaded. Records of
// deactivated or unlinked questions are left out.
func (r *AttemptRepository) ActiveRecords(attempt *model.Attempt) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord
	err := r.activeRecords(attempt).
		Preload("Answers").
		Order("answer_records.id asc").
		Find(&records).Error
	return records, err
}

// AnsweredActiveQuestionIDs is ActiveRecords reduced to question ids.
func (r *AttemptRepository) AnsweredActiveQuestionIDs(attempt *model.Attempt) ([]uint, error) {
	var ids []uint
	err := r.activeRecords(attempt).Pluck("answer_records.question_id", &ids).Error
	return ids, err
}

func (r *AttemptRepository) FindRecord(attemptID, questionID uint) (*model.AnswerRecord, error) {
	var rec model.AnswerRecord
	err := r.DB.Preload("Answers").
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveRecord stores answers as the selection of (attemptID, questionID),
// replacing any earlier selection. There is at most one record per pair:
// when a concurrent submission inserts it first, the insert fails on the
// unique index and the existing row is updated instead.
func (r *AttemptRepository) SaveRecord(attemptID, questionID uint, answers []model.Answer) (*model.AnswerRecord, error) {
	var rec model.AnswerRecord
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = model.AnswerRecord{AttemptID: attemptID, QuestionID: questionID}
			err = tx.Transaction(func(sp *gorm.DB) error {
				return sp.Omit("Answers").Create(&rec).Error
			})
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				rec = model.AnswerRecord{}
				err = tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&rec).Error
			}
		}
		if err != nil {
			return err
		}

		return tx.Model(&rec).Association("Answers").Replace(answers)
	})
	if err != nil {
		return nil, err
	}
	rec.Answers = answers
	return &rec, nil
}
