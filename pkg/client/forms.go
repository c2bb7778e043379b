package client

import (
	"context"
	"errors"
)

// UsersQueryKey is the cache key under which list views keep the fetched
// users; creating a user invalidates it.
const UsersQueryKey = "users"

// NewUserForm returns the "new user" form: tracked fields name, email and
// role, invalidating the users list on success.
func NewUserForm(c *Client, cache *QueryCache) *FormMutation {
	return NewFormMutation(
		cache,
		[]string{"name", "email", "role"},
		[]string{UsersQueryKey},
		nil,
		func(ctx context.Context, fields map[string]string) (string, error) {
			created, err := c.CreateUser(ctx, CreateUserInput{
				Name:  fields["name"],
				Email: fields["email"],
				Role:  fields["role"],
			})
			if err != nil {
				return "", err
			}
			return created.Message, nil
		},
	)
}

// ChangePasswordForm returns the self-service password form. The confirm
// field is a UI-layer guard only; the request carries current and new.
func ChangePasswordForm(c *Client) *FormMutation {
	return NewFormMutation(
		nil,
		[]string{"currentPassword", "newPassword", "confirmNewPassword"},
		nil,
		func(fields map[string]string) error {
			if fields["newPassword"] != fields["confirmNewPassword"] {
				return errors.New("New password and confirmation do not match.")
			}
			return nil
		},
		func(ctx context.Context, fields map[string]string) (string, error) {
			return c.ChangePassword(ctx, fields["currentPassword"], fields["newPassword"])
		},
	)
}

// FetchUsers returns the users list, serving from the query cache when the
// key is present and refetching after an invalidation.
func FetchUsers(ctx context.Context, c *Client, cache *QueryCache) ([]User, error) {
	if cache != nil {
		if cached, ok := cache.Get(UsersQueryKey); ok {
			if users, ok := cached.([]User); ok {
				return users, nil
			}
		}
	}

	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Set(UsersQueryKey, users)
	}
	return users, nil
}
