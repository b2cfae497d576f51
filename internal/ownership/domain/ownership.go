package domain

import (
	"errors"
	"time"
)

// BoxOwnership maps a box to the single account that claimed it. Claims are
// one-time and irreversible: once a box id appears here, every later claim
// attempt is a conflict, including by the original owner.
type BoxOwnership struct {
	ID        string
	AccountID string
	BoxID     string
	Label     string
	CreatedAt time.Time
}

// Validate validates the ownership row for persistence.
func (o *BoxOwnership) Validate() error {
	if o.AccountID == "" {
		return errors.New("account id is required")
	}
	if o.BoxID == "" {
		return errors.New("box id is required")
	}
	return nil
}
