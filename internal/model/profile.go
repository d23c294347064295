package model

import "time"

// Profile is a named group customers can be tagged with.
type Profile struct {
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
