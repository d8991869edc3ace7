package contact

import (
	"context"
	"errors"

	foliosdk "portfolio/sdk/go"
)

// HTTPSubmitter posts fields as JSON to the site's /api/contact endpoint.
type HTTPSubmitter struct {
	Client *foliosdk.Client
}

// NewHTTPSubmitter returns a submitter for the API at baseURL. It sets no
// timeout of its own; failure comes from the transport.
func NewHTTPSubmitter(baseURL string) HTTPSubmitter {
	c := foliosdk.New(baseURL)
	c.Timeout = 0
	return HTTPSubmitter{Client: c}
}

// Submit implements Submitter.
func (s HTTPSubmitter) Submit(ctx context.Context, f Fields) error {
	err := s.Client.SubmitContact(ctx, foliosdk.ContactRequest{
		Name:    f.Name,
		Email:   f.Email,
		Message: f.Message,
	})
	if err == nil {
		return nil
	}
	var apiErr *foliosdk.APIError
	if errors.As(err, &apiErr) {
		return &ServerRejection{StatusCode: apiErr.StatusCode, Body: apiErr.Body}
	}
	return &TransportError{Err: err}
}
