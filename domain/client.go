package domain

// Client is a customer-directory entry. The checkout core only reads,
// selects and creates clients; the directory owns their lifecycle.
type Client struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
}
