package model

// Hiring is the projection of a hired service returned by the hiring
// collaborator. The claim flow only needs the two party ids and the mutable
// status id.
type Hiring struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ProviderID   string `json:"provider_id"`
	StatusID     string `json:"status_id"`
	ServiceTitle string `json:"service_title,omitempty"`
}

// User is the projection of an account returned by the identity collaborator.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
