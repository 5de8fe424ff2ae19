package model

import (
	"time"

	"github.com/google/uuid"
)

// SearchHistory is a snapshot of one weather lookup. The owner is fixed at
// creation and never reassigned.
type SearchHistory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	City        string    `db:"city" json:"city"`
	Temperature *float64  `db:"temperature" json:"temperature"`
	Condition   string    `db:"condition" json:"condition"`
	Humidity    *float64  `db:"humidity" json:"humidity"`
	WindSpeed   *float64  `db:"wind_speed" json:"windSpeed"`
	SearchedAt  time.Time `db:"searched_at" json:"searchedAt"`
}

// SearchHistoryWithOwner is the admin view of a record, with the owning
// user's display fields joined in.
type SearchHistoryWithOwner struct {
	SearchHistory
	OwnerName  string `db:"owner_name" json:"ownerName"`
	OwnerEmail string `db:"owner_email" json:"ownerEmail"`
}
