package entity

import (
	"time"

	"github.com/google/uuid"
)

// Record timestamps shared by content kinds live in the generic Record map;
// these bases back the fixed-shape auth tables.

type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
