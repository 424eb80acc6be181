package repository

import (
	"quiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// Create stores the question together with its answers.
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("answers.id asc")
	}).First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) List(search string, qtype model.QuestionType, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64
	query := r.DB.Model(&model.Question{})
	if search != "" {
		query = query.Where("text LIKE ?", "%"+search+"%")
	}
	if qtype.Valid() {
		query = query.Where("type = ?", qtype)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Answers").Order("id asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// Update saves the question and makes its answer list exactly answers:
// answers carrying an id of this question are updated, the rest are created,
// and answers no longer listed are removed.
func (r *QuestionRepository) Update(q *model.Question, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Question{}).Where("id = ?", q.ID).
			Updates(map[string]interface{}{"text": q.Text, "type": q.Type}).Error
		if err != nil {
			return err
		}

		keep := make([]uint, 0, len(answers))
		for i := range answers {
			a := &answers[i]
			a.QuestionID = q.ID
			if a.ID != 0 {
				res := tx.Model(&model.Answer{}).
					Where("id = ? AND question_id = ?", a.ID, q.ID).
					Updates(map[string]interface{}{"text": a.Text, "is_correct": a.IsCorrect})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 1 {
					keep = append(keep, a.ID)
					continue
				}
				a.ID = 0
			}
			if err := tx.Create(a).Error; err != nil {
				return err
			}
			keep = append(keep, a.ID)
		}

		stale := tx.Where("question_id = ?", q.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&model.Answer{}).Error; err != nil {
			return err
		}

		q.Answers = answers
		return nil
	})
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.TopicLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

// SelectedAnswerCount counts the answer records that chose any of answerIDs.
func (r *QuestionRepository) SelectedAnswerCount(answerIDs []uint) (int64, error) {
	var count int64
	if len(answerIDs) == 0 {
		return 0, nil
	}
	err := r.DB.Table("answer_record_answers").Where("answer_id IN ?", answerIDs).Count(&count).Error
	return count, err
}

// IsAnswered reports whether any attempt holds an answer to the question.
func (r *QuestionRepository) IsAnswered(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AnswerRecord{}).Where("question_id = ?", id).Count(&count).Error
	return count > 0, err
}

// CorrectAnswerIDs maps each of questionIDs to the ids of its correct answers.
func (r *QuestionRepository) CorrectAnswerIDs(questionIDs []uint) (map[uint][]uint, error) {
	result := make(map[uint][]uint, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ID         uint
		QuestionID uint
	}
	err := r.DB.Model(&model.Answer{}).
		Select("id, question_id").
		Where("question_id IN ? AND is_correct = ?", questionIDs, true).
		Order("id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.QuestionID] = append(result[row.QuestionID], row.ID)
	}
	return result, nil
}
