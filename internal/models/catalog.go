package models

// Company is a publisher or developer referenced by games. Companies are
// managed outside this service and read-only here.
type Company struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`
}

// Genre is a catalog tag referenced by the game-genre association.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
