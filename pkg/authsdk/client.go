package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the auth service. Public operations hang off the
// client; Login returns a Session for the authenticated ones.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromToken wraps a token obtained elsewhere, for example one
// stored by a web frontend.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}
