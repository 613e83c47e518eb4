package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"aoedash/internal/config"
	"aoedash/internal/logging"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// storageScope is the Azure AD scope for data plane access to storage.
	storageScope = "https://storage.azure.com/.default"
	// apiVersion is sent as x-ms-version on every request.
	apiVersion = "2021-06-08"
)

// DataLakeOptions configures a DataLakeSource.
type DataLakeOptions struct {
	Account   string
	Container string
	// Endpoint overrides https://{Account}.dfs.core.windows.net.
	Endpoint string
	// TokenURL overrides the Azure AD v2 token endpoint for the tenant.
	TokenURL    string
	Credentials config.Credentials
	// HTTPClient is the base transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// DataLakeSource reads files from an Azure Data Lake Storage Gen2
// filesystem with the "Path - Read" REST operation, authenticating as a
// service principal through the client-credentials flow.
type DataLakeSource struct {
	endpoint  string
	container string
	client    *http.Client
}

// NewDataLakeSource creates a source. Without complete credentials requests
// are sent anonymously, which only works against public containers and
// local emulators.
func NewDataLakeSource(ctx context.Context, opts DataLakeOptions) (*DataLakeSource, error) {
	if opts.Container == "" {
		return nil, fmt.Errorf("data lake container not configured")
	}
	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		if opts.Account == "" {
			return nil, fmt.Errorf("data lake account not configured")
		}
		endpoint = fmt.Sprintf("https://%s.dfs.core.windows.net", opts.Account)
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	client := base
	if opts.Credentials.Complete() {
		tokenURL := opts.TokenURL
		if tokenURL == "" {
			tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(opts.Credentials.TenantID))
		}
		cc := &clientcredentials.Config{
			ClientID:     opts.Credentials.ClientID,
			ClientSecret: opts.Credentials.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{storageScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		client = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	} else {
		logging.FetchWarn("no Azure credentials in environment, reading %s anonymously", endpoint)
	}

	return &DataLakeSource{
		endpoint:  endpoint,
		container: opts.Container,
		client:    client,
	}, nil
}

// Describe implements Source.
func (s *DataLakeSource) Describe() string {
	return s.endpoint + "/" + s.container
}

// Read implements Source.
func (s *DataLakeSource) Read(ctx context.Context, path string) ([]byte, error) {
	u := s.endpoint + "/" + url.PathEscape(s.container) + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-ms-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		code := resp.Header.Get("x-ms-error-code")
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("data lake returned %d (%s)", resp.StatusCode, code)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

func escapePath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
