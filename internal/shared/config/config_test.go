package config

import "testing"

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "two segments", input: "Invoices/Outgoing", want: []string{"Invoices", "Outgoing"}},
		{name: "single segment", input: "Invoices", want: []string{"Invoices"}},
		{name: "slashes trimmed", input: "/Invoices//Outgoing/", want: []string{"Invoices", "Outgoing"}},
		{name: "spaces trimmed", input: " Invoices / Outgoing ", want: []string{"Invoices", "Outgoing"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitPath(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitPath(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("splitPath(%q) = %v, want %v", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestNormalizeBackend(t *testing.T) {
	t.Parallel()

	if got := normalizeBackend(" S3 "); got != "s3" {
		t.Fatalf("normalizeBackend(S3) = %q, want s3", got)
	}
	if got := normalizeBackend("anything-else"); got != "drive" {
		t.Fatalf("normalizeBackend default = %q, want drive", got)
	}
}
