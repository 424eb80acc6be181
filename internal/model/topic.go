package model

// swagger:model Topic
type Topic struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (Topic) TableName() string {
	return "topics"
}

// TopicLink places a question inside a topic. Within one topic no two links
// share an Order once a write has been committed.
// swagger:model TopicLink
type TopicLink struct {
	Row
	TopicID    uint      `gorm:"not null;uniqueIndex:idx_topic_links_topic_question;index:idx_topic_links_topic_order,priority:1" json:"topicId"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_topic_links_topic_question" json:"questionId"`
	Order      uint      `gorm:"column:sort_order;not null;index:idx_topic_links_topic_order,priority:2" json:"order"`
	Active     bool      `gorm:"not null" json:"active"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (TopicLink) TableName() string {
	return "topic_links"
}
