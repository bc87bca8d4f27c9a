package api

// UpdateAccountRequest changes the caller's username and/or email.
// Empty fields are left unchanged; at least one must be set.
type UpdateAccountRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type UpdateAccountResponse struct {
	User *User `json:"user"`
}

type DeleteAccountRequest struct{}

type DeleteAccountResponse struct{}

type SearchUsersRequest struct {
	Query string `json:"query"`
}

type SearchUsersResponse struct {
	Users []*User `json:"users"`
}
