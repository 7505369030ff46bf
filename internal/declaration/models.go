package declaration

import (
	"time"

	"frontera/internal/lifecycle"
)

// Collection key, also the table name and event collection label.
const Collection = "declarations"

// Category separates the two inspection queues. Agricultural inspectors
// hold a per-category validation permission.
type Category string

const (
	CategoryFood Category = "food"
	CategoryPet  Category = "pet"
)

func (c Category) Valid() bool {
	return c == CategoryFood || c == CategoryPet
}

// Declaration is a customs declaration filed at the checkpoint. Notes are
// review notes written by the deciding inspector; cleared on reopen.
type Declaration struct {
	ID       string           `json:"id"`
	Category Category         `json:"category"`
	Items    []string         `json:"items"`
	Traveler string           `json:"traveler"`
	OwnerID  string           `json:"owner_id,omitempty"`
	Status   lifecycle.Status `json:"status"`
	Date     time.Time        `json:"date"`
	Notes    string           `json:"notes,omitempty"`
}
