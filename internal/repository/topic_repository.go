package repository

import (
	"errors"
	"quiz_backend/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) Create(t *model.Topic) error {
	return r.DB.Create(t).Error
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var t model.Topic
	err := r.DB.First(&t, id).Error
	return &t, err
}

func (r *TopicRepository) FindByTitle(title string) (*model.Topic, error) {
	var t model.Topic
	err := r.DB.Where("title = ?", title).First(&t).Error
	return &t, err
}

func (r *TopicRepository) List(page, limit int) ([]model.Topic, int64, error) {
	var ts []model.Topic
	var total int64
	query := r.DB.Model(&model.Topic{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&ts).Error
	return ts, total, err
}

func (r *TopicRepository) Update(t *model.Topic) error {
	return r.DB.Model(&model.Topic{}).Where("id = ?", t.ID).
		Updates(map[string]interface{}{"title": t.Title, "description": t.Description}).Error
}

// Delete removes the topic and all its links.
func (r *TopicRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", id).Delete(&model.TopicLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Topic{}, id).Error
	})
}

func (r *TopicRepository) HasAttempts(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("topic_id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpsertLink is the only write path for topic links. It creates or updates
// the link of (topicID, questionID) and, when the write lands on an order
// already taken by another link of the topic, moves every other link of the
// topic with order >= the new order one step down. Only creation or a
// changed order triggers the check; gaps are never closed.
//
// The returned bool reports whether other links were shifted.
func (r *TopicRepository) UpsertLink(topicID, questionID, order uint, active bool) (*model.TopicLink, bool, error) {
	var link model.TopicLink
	shifted := false

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("topic_id = ? AND question_id = ?", topicID, questionID).First(&link).Error
		created := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !created {
			return err
		}
		prevOrder := link.Order

		link.TopicID = topicID
		link.QuestionID = questionID
		link.Order = order
		link.Active = active
		if err := tx.Save(&link).Error; err != nil {
			return err
		}

		if !created && prevOrder == order {
			return nil
		}

		var taken int64
		err = tx.Model(&model.TopicLink{}).
			Where("topic_id = ? AND sort_order = ? AND id <> ?", topicID, order, link.ID).
			Count(&taken).Error
		if err != nil || taken == 0 {
			return err
		}

		shifted = true
		return tx.Model(&model.TopicLink{}).
			Where("topic_id = ? AND sort_order >= ? AND id <> ?", topicID, order, link.ID).
			Update("sort_order", gorm.Expr("sort_order + ?", 1)).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &link, shifted, nil
}

// DeleteLink removes the link and reports whether it existed.
func (r *TopicRepository) DeleteLink(topicID, questionID uint) (bool, error) {
	res := r.DB.Where("topic_id = ? AND question_id = ?", topicID, questionID).Delete(&model.TopicLink{})
	return res.RowsAffected > 0, res.Error
}

// TopicIDsForQuestion lists the topics that link the question.
func (r *TopicRepository) TopicIDsForQuestion(questionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.TopicLink{}).Where("question_id = ?", questionID).
		Distinct().Pluck("topic_id", &ids).Error
	return ids, err
}

// ListLinks returns every link of the topic, active or not, in sequence order.
func (r *TopicRepository) ListLinks(topicID uint) ([]model.TopicLink, error) {
	var links []model.TopicLink
	err := r.DB.Preload("Question").
		Where("topic_id = ?", topicID).
		Order("sort_order asc, question_id asc").
		Find(&links).Error
	return links, err
}

func (r *TopicRepository) activeQuery(topicID uint) *gorm.DB {
	return r.DB.Model(&model.Question{}).
		Joins("JOIN topic_links ON topic_links.question_id = questions.id").
		Where("topic_links.topic_id = ? AND topic_links.active = ?", topicID, true).
		Order("topic_links.sort_order asc, questions.id asc")
}

// ActiveQuestions returns the questions an attempt walks through, in order.
// It always reads the live link table.
func (r *TopicRepository) ActiveQuestions(topicID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.activeQuery(topicID).Find(&qs).Error
	return qs, err
}

// ActiveQuestionIDs is ActiveQuestions reduced to ids.
func (r *TopicRepository) ActiveQuestionIDs(topicID uint) ([]uint, error) {
	var ids []uint
	err := r.activeQuery(topicID).Pluck("questions.id", &ids).Error
	return ids, err
}

func (r *TopicRepository) CountActiveQuestions(topicID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TopicLink{}).
		Joins("JOIN questions ON questions.id = topic_links.question_id AND questions.deleted_at IS NULL").
		Where("topic_links.topic_id = ? AND topic_links.active = ?", topicID, true).
		Count(&count).Error
	return count, err
}

// QuestionAt returns the question at the 1-based position number of the
// active sequence with its answers loaded, or gorm.ErrRecordNotFound when
// number is outside [1, active count].
func (r *TopicRepository) QuestionAt(topicID uint, number int) (*model.Question, error) {
	if number < 1 {
		return nil, gorm.ErrRecordNotFound
	}
	var q model.Question
	err := r.activeQuery(topicID).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.id asc")
		}).
		Offset(number - 1).Limit(1).
		Take(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}
