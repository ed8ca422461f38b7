package upstream

import (
	"context"
)

// ManageUsersAPI reads the signed-in member of staff.
type ManageUsersAPI struct {
	client *Client
}

// NewManageUsersAPI wraps a client pointed at the manage users API.
func NewManageUsersAPI(client *Client) *ManageUsersAPI {
	return &ManageUsersAPI{client: client}
}

// StaffUser is the user record returned for a token.
type StaffUser struct {
	Username         string `json:"username"`
	Name             string `json:"name"`
	AuthSource       string `json:"authSource"`
	ActiveCaseloadID string `json:"activeCaseloadId"`
}

// GetMe returns the user the token belongs to.
func (m *ManageUsersAPI) GetMe(ctx context.Context, token string) (*StaffUser, error) {
	const op = "manageusers.GetMe"

	var body StaffUser
	resp, err := m.client.request(ctx, token).
		SetResult(&body).
		Get("/users/me")
	if err := m.client.check(op, resp, err); err != nil {
		return nil, err
	}
	return &body, nil
}
