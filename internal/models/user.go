package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns tasks and carries an internal custodial credit balance
// usable for funding any of its tasks.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
