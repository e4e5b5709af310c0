// internal/app/system/filestore/filestore_test.go
package filestore

import (
	"reflect"
	"testing"
)

func TestURL(t *testing.T) {
	r := New("https://cdn.example.com/files/")

	if got := r.URL("abc123"); got != "https://cdn.example.com/files/abc123" {
		t.Fatalf("URL = %q", got)
	}
	if got := r.URL("  "); got != "" {
		t.Fatalf("blank id produced %q", got)
	}
}

func TestURLs(t *testing.T) {
	r := New("https://cdn.example.com/files")

	got := r.URLs("a, b,,c")
	want := []string{
		"https://cdn.example.com/files/a",
		"https://cdn.example.com/files/b",
		"https://cdn.example.com/files/c",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("URLs = %v, want %v", got, want)
	}

	if got := r.URLs(""); got != nil {
		t.Fatalf("empty list produced %v", got)
	}
}
