package models

// Category groups the providers offering a consultation type.
type Category struct {
	CategoryName string     `json:"category_name"`
	List         []Provider `json:"list"`
}

// Provider is a doctor/specialist profile as served by the remote API.
// Read-only on our side.
type Provider struct {
	ID                int      `json:"id"`
	FullName          string   `json:"full_name"`
	Occupations       []string `json:"occupations"`
	MeetingBaseAmount float64  `json:"meeting_base_amount"`
	MeetingStatus     string   `json:"meeting_status"`
	Avatar            string   `json:"avatar"`
	About             string   `json:"about,omitempty"`
}
