// Package datasource resolves input locations into readable sources. Local
// paths are served by the file subpackage and http(s) URLs by httpds.
package datasource

import (
	"context"
	"io"
	"strings"

	"autofeat/internal/datasource/file"
	"autofeat/internal/datasource/httpds"
)

// Source opens a byte stream. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// For returns the Source for location. client serves remote locations and
// may be nil, in which case a default client is built on first use.
func For(location string, client *httpds.Client) Source {
	if IsRemote(location) {
		if client == nil {
			client = httpds.NewClient(httpds.Config{MaxRetries: 3})
		}
		return httpds.NewURL(client, location)
	}
	return file.NewLocal(location)
}
