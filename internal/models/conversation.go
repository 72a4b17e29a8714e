package models

// Conversation groups the messages of a single chat thread. The title is
// derived from the first user message and never exceeds 200 characters.
// UpdatedAt is bumped on every completed turn.
type Conversation struct {
	BaseModel

	Title  string `gorm:"size:200;not null" json:"title"`
	UserID string `gorm:"type:uuid;not null;index" json:"-"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`
}
