package models

// BilingualText carries a prompt in the platform's primary language plus an
// optional secondary-language rendering. Fallback order is fixed: primary
// first, secondary only when primary is empty.
type BilingualText struct {
	Primary   string `json:"primary" validate:"required"`
	Secondary string `json:"secondary"`
}

// Display returns the text to render for a single-language client.
func (t BilingualText) Display() string {
	if t.Primary != "" {
		return t.Primary
	}
	return t.Secondary
}

// IsEmpty reports whether neither language has content.
func (t BilingualText) IsEmpty() bool {
	return t.Primary == "" && t.Secondary == ""
}
