package models

// Group represents a community a post can be published into. Groups are
// created by admin tooling or seeding, never through request handlers.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Description string `json:"description"`

	Posts []Post `gorm:"foreignKey:GroupID" json:"posts,omitempty"`
}
