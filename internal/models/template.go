package models

import "time"

// Template kinds.
const (
	TemplateKindBuiltin = "builtin"
	TemplateKindCustom  = "custom"
)

// BuiltinTemplateID identifies the programmatically built default layout. It
// is always available even when no custom template has been uploaded.
const BuiltinTemplateID = "builtin-default"

// Template references a report layout. Custom templates carry the uploaded
// document package verbatim; the bytes are immutable once a render has
// referenced them.
type Template struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	TemplateID string    `gorm:"size:64;uniqueIndex;not null" json:"template_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Kind       string    `gorm:"size:16;not null" json:"kind"`
	Document   []byte    `gorm:"type:bytes" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
