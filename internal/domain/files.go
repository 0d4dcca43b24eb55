package domain

import "time"

// SeenFile is a hash store entry: the content hash and where it was first seen.
type SeenFile struct {
	Hash        string    `db:"hash"`
	Filename    string    `db:"filename"`
	FirstSeenAt time.Time `db:"first_seen_at"`
}
