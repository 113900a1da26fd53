package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
)

type Event struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Location  *string     `json:"location,omitempty"`
	StartsAt  time.Time   `json:"starts_at"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
