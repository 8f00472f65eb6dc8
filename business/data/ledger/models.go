package ledger

import "time"

// Coin represents one successfully mined unit. Coins are created exactly
// once and never updated or deleted.
type Coin struct {
	Digest    string    `gorm:"column:digest;uniqueIndex" json:"digest"`
	Message   string    `gorm:"column:message;uniqueIndex" json:"message"`
	Owner     string    `gorm:"column:owner;index" json:"owner"`
	Value     int       `gorm:"column:value" json:"value"`
	Parent    string    `gorm:"column:parent" json:"parent"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the default table name.
func (Coin) TableName() string {
	return "coins"
}

// Debit represents a coin being spent in a settlement. A coin can have at
// most one debit ever.
type Debit struct {
	Digest       string    `gorm:"column:digest;uniqueIndex" json:"digest"`
	PosseAwardID uint      `gorm:"column:posse_award_id" json:"posse_award_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the default table name.
func (Debit) TableName() string {
	return "debits"
}

// PosseAward represents the points awarded to the winning posse of one
// completed auction.
type PosseAward struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Value     int       `gorm:"column:value" json:"value"`
	Posse     string    `gorm:"column:posse" json:"posse"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the default table name.
func (PosseAward) TableName() string {
	return "posse_awards"
}
