package models

import "time"

// Post represents a published text entry, optionally assigned to a Group and
// optionally carrying an attached image stored by reference.
//
// CreatedAt is set once on insert and never updated; listings everywhere
// order by it descending (id breaks ties for rows created in the same tick).
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}
