package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MediaClient downloads message media from Twilio. Media URLs require basic
// auth with the account SID and auth token.
type MediaClient struct {
	httpClient *http.Client
	accountSID string
	authToken  string
}

// NewMediaClient creates a media download client
func NewMediaClient(accountSID, authToken string) *MediaClient {
	return &MediaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		accountSID: accountSID,
		authToken:  authToken,
	}
}

// Download fetches media bytes and the reported content type
func (c *MediaClient) Download(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build media request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download media: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read media body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return body, contentType, nil
}
