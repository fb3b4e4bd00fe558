package hirings

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

var ErrHiringNotFound = errors.New("hiring not found")

// Client talks to the hirings collaborator service.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) FindByID(ctx context.Context, hiringID string) (model.Hiring, error) {
	var hiring model.Hiring
	err := httpclient.DoJSON(ctx, c.http, http.MethodGet,
		fmt.Sprintf("%s/hirings/%s", c.baseURL, url.PathEscape(hiringID)), nil, &hiring)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return model.Hiring{}, ErrHiringNotFound
		}
		return model.Hiring{}, fmt.Errorf("get hiring: %w", err)
	}
	return hiring, nil
}

func (c *Client) UpdateStatus(ctx context.Context, hiringID, statusID string) error {
	payload := map[string]any{"status_id": statusID}
	err := httpclient.DoJSON(ctx, c.http, http.MethodPatch,
		fmt.Sprintf("%s/hirings/%s/status", c.baseURL, url.PathEscape(hiringID)), payload, nil)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return ErrHiringNotFound
		}
		return fmt.Errorf("update hiring status: %w", err)
	}
	return nil
}
