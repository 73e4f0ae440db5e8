// Package models contains the storage shapes persisted by the inventory API.
package models

import "time"

// Document is a JSON document stored by the gorm document store backend.
// A document is addressed by its collection and key; together they are unique.
type Document struct {
	// ID is the surrogate primary key.
	ID uint64 `gorm:"primaryKey"`
	// Collection is the name of the collection the document belongs to (e.g. "roles").
	Collection string `gorm:"size:100;not null;uniqueIndex:idx_collection_key"`
	// Key addresses the document inside its collection.
	Key string `gorm:"column:doc_key;size:255;not null;uniqueIndex:idx_collection_key"`
	// Body is the JSON encoded document.
	Body []byte `gorm:"not null"`
	// CreatedAt is the timestamp when the document was inserted (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp of the last write (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Document model.
// This overrides GORM's default pluralized table naming.
func (Document) TableName() string {
	return "documents"
}
