package datasource

import (
	"testing"

	"autofeat/internal/datasource/file"
	"autofeat/internal/datasource/httpds"
)

func TestFor(t *testing.T) {
	t.Parallel()

	if _, ok := For("data/part-1.tsv", nil).(*file.Local); !ok {
		t.Fatalf("For(local path) did not return *file.Local")
	}
	if _, ok := For("HTTPS://example.com/a.tsv", nil).(*httpds.URL); !ok {
		t.Fatalf("For(url) did not return *httpds.URL")
	}
	if IsRemote("ftp://example.com/a.tsv") {
		t.Fatalf("IsRemote(ftp) = true; want false")
	}
}
