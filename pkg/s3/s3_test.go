package s3

import "testing"

func TestURLRoundTrip(t *testing.T) {
	c := &Client{bucket: "sbrp-artifacts"}

	u := c.URL("reports/r1/a.pdf")
	if u != "s3://sbrp-artifacts/reports/r1/a.pdf" {
		t.Fatalf("URL() = %q", u)
	}

	tests := []struct {
		in      string
		wantKey string
		wantOK  bool
	}{
		{u, "reports/r1/a.pdf", true},
		{"s3://other-bucket/reports/r1/a.pdf", "", false},
		{"https://files.example.com/a.pdf", "", false},
		{"s3://sbrp-artifacts/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, ok := c.KeyFromURL(tt.in)
			if ok != tt.wantOK || (ok && key != tt.wantKey) {
				t.Errorf("KeyFromURL(%q) = %q, %v", tt.in, key, ok)
			}
		})
	}
}
