package model

// Indicator is a named sustainability metric in the static catalog
type Indicator struct {
	ID    FlexString `json:"indicator_id"`
	Name  string     `json:"indicator_name"`
	Theme string     `json:"theme,omitempty"` // e.g. "Climate", "Water"
	Unit  string     `json:"unit,omitempty"`
}
