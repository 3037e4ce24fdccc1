// internal/models/focus_area.go
package models

// FocusArea is one entry of the fixed browsing taxonomy.
type FocusArea struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}
