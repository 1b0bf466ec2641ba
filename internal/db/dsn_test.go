package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"url passthrough", "postgres://u:p@localhost:5432/panelquote", "postgres://u:p@localhost:5432/panelquote"},
		{"quoted url", `"postgresql://u:p@db/panelquote"`, "postgresql://u:p@db/panelquote"},
		{"kv adds sslmode", "host=localhost user=pq dbname=panelquote", "host=localhost user=pq dbname=panelquote sslmode=disable"},
		{"kv keeps sslmode", "host=localhost sslmode=require", "host=localhost sslmode=require"},
		{"kv collapses whitespace", "host=localhost   user=pq\tdbname=panelquote sslmode=disable", "host=localhost user=pq dbname=panelquote sslmode=disable"},
		{"empty", "   ", ""},
		{"opaque string untouched", "sqlite-file.db", "sqlite-file.db"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDSN(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	masked := MaskDSN("host=localhost password=hunter2 dbname=panelquote")
	if masked != "host=localhost password=*** dbname=panelquote" {
		t.Fatalf("unexpected mask: %q", masked)
	}
	if MaskDSN("postgres://u:p@db/x") != "postgres://u:p@db/x" {
		t.Fatalf("url form should pass through")
	}
}
