package models

import "time"

// Editor is a publisher ("éditeur") owning newsletters.
type Editor struct {
	ID        int64      `json:"id"`
	Name      string     `json:"nom"`
	CreatedAt time.Time  `json:"created_at"`
	Documents []Document `json:"documents,omitempty"`
}

// DocumentKindEditorLogo marks a document row holding a publisher logo.
const DocumentKindEditorLogo = "EDITEUR_LOGO"

// Document is a stored file reference. Blobs live in the object store,
// the application keeps only URL and metadata.
type Document struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	EditorID  *int64    `json:"editor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
