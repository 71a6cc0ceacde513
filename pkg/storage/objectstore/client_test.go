package objectstore

import (
	"context"
	"testing"

	"github.com/sunkaracharan/roifinal/pkg/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"http://localhost:9000":   "localhost:9000",
		"https://s3.example.com/": "s3.example.com",
		" minio.internal:9000 ":   "minio.internal:9000",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in); got != want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient(context.Background(), config.StorageConfig{Bucket: "roi-reports"}, nil); err == nil {
		t.Fatal("expected error without endpoint")
	}
	if _, err := NewClient(context.Background(), config.StorageConfig{Endpoint: "localhost:9000"}, nil); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if err := c.Put(context.Background(), "k", nil, "application/pdf"); err == nil {
		t.Fatal("expected put error on nil client")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on nil client")
	}
}
