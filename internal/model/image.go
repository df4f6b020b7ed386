package model

// ImageRecord is a stored image payload. Each record is owned by exactly one
// referencing item or gallery item at a time; replacement deletes the old
// record before the new one is written.
type ImageRecord struct {
	ID        string
	Data      []byte
	MIME      string
	CreatedAt int64
}
