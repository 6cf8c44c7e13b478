package models

import "time"

// Game is a catalog listing. Publisher and developer reference Company
// rows; genres form a many-to-many set of one to three entries.
type Game struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Image            *string   `gorm:"size:255" json:"img"`
	Offer            float64   `gorm:"not null" json:"offer"`
	Price            float64   `gorm:"not null" json:"price"`
	Stock            int       `gorm:"not null" json:"stock"`
	Rating           float64   `gorm:"not null" json:"rating"`
	ReleaseDate      time.Time `gorm:"type:date;not null" json:"release_date"`
	ShortDescription string    `gorm:"size:255;not null" json:"short_description"`
	PublisherID      uint      `gorm:"not null" json:"publisher_id"`
	Publisher        Company   `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	DeveloperID      uint      `gorm:"not null" json:"developer_id"`
	Developer        Company   `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
	Genres           []Genre   `gorm:"many2many:game_genres;" json:"genres,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
