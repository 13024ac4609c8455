package model

import "github.com/google/uuid"

// ensureID assigns a random UUID when the caller did not set one. IDs are
// generated client-side so the same models work on postgres and sqlite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
