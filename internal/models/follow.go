package models

import "time"

// Follow is a directed subscription edge: UserID (the follower) receives
// AuthorID's posts in their following feed. The (user_id, author_id) pair is
// unique at the storage layer; self-follow prevention lives in the handlers,
// not in the schema.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
