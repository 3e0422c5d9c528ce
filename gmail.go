package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// metadataURL is the GCE metadata endpoint answered only inside Google Cloud.
var metadataURL = "http://metadata.google.internal/computeMetadata/v1/project/project-id"

// onGoogleCloud reports whether the metadata server answers, meaning
// Application Default Credentials are available.
func onGoogleCloud(ctx context.Context, client *http.Client) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // best effort
	}()
	return resp.StatusCode == http.StatusOK
}

// initGmailService builds the digest mailer's Gmail client from explicit
// credentials, or from the service account when running on Google Cloud.
func initGmailService(ctx context.Context, client *http.Client, credsJSON string) (*gmail.Service, error) {
	if credsJSON != "" {
		return gmail.NewService(ctx, option.WithCredentialsJSON([]byte(credsJSON)))
	}
	if onGoogleCloud(ctx, client) {
		// The service account needs the gmail.send scope.
		return gmail.NewService(ctx)
	}
	return nil, errors.New("GOOGLE_CREDENTIALS_JSON required for the digest email outside Google Cloud")
}
