package model

// Manifest is the document written to index.json.
type Manifest struct {
	GeneratedAt string  `json:"generated_at"`
	Tracks      []Track `json:"tracks"`
}
