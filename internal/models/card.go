package models

import "time"

// TokenizedCard is a stored card token. Card linking and deletion are
// owned by the card management surface; this core only reads tokens
// for the saved-card settlement path.
type TokenizedCard struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	CustomerID uint   `gorm:"not null;index" json:"-"`
	Token      string `gorm:"not null" json:"-"`
	CardType   string `json:"card_type"`
	LastFour   string `json:"last_four"`
	Bin        string `gorm:"index" json:"-"`
	Status     string `gorm:"not null;default:'active'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}
