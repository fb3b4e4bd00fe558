package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/infra/httpclient"
)

var ErrUserNotFound = errors.New("user not found")

// Client talks to the users collaborator service.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := httpclient.DoJSON(ctx, c.http, http.MethodGet,
		fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID)), nil, &user)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUsersByIDs resolves a batch of users in one round trip. Unknown ids are
// simply absent from the result.
func (c *Client) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error) {
	if len(userIDs) == 0 {
		return map[string]model.User{}, nil
	}

	var resp struct {
		Users []model.User `json:"users"`
	}
	payload := map[string]any{"ids": userIDs}
	err := httpclient.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/users/batch", payload, &resp)
	if err != nil {
		return nil, fmt.Errorf("get users batch: %w", err)
	}

	byID := make(map[string]model.User, len(resp.Users))
	for _, u := range resp.Users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (c *Client) SuspendUser(ctx context.Context, userID string, days int, reason string) error {
	payload := map[string]any{"days": days, "reason": reason}
	err := httpclient.DoJSON(ctx, c.http, http.MethodPost,
		fmt.Sprintf("%s/users/%s/suspend", c.baseURL, url.PathEscape(userID)), payload, nil)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("suspend user: %w", err)
	}
	return nil
}

func (c *Client) BanUser(ctx context.Context, userID, reason string) error {
	payload := map[string]any{"reason": reason}
	err := httpclient.DoJSON(ctx, c.http, http.MethodPost,
		fmt.Sprintf("%s/users/%s/ban", c.baseURL, url.PathEscape(userID)), payload, nil)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ban user: %w", err)
	}
	return nil
}
