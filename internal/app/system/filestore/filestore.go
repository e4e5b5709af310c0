// internal/app/system/filestore/filestore.go
//
// Package filestore maps stored file identifiers to public download URLs.
// Uploaded files (avatars, supporting documents) are kept by id; user
// records store the id, and views expand it to a URL at read time so the
// storage host can move without a data migration.
package filestore

import (
	"strings"
)

// Resolver expands file ids into download URLs under a fixed base.
type Resolver struct {
	baseURL string
}

// New returns a Resolver rooted at baseURL, e.g. "https://cdn.example.com/files".
func New(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the download URL for a stored file id, or "" for an empty id.
func (r *Resolver) URL(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return r.baseURL + "/" + id
}

// URLs expands a comma-separated list of file ids, skipping blanks.
func (r *Resolver) URLs(ids string) []string {
	var out []string
	for _, id := range strings.Split(ids, ",") {
		if u := r.URL(id); u != "" {
			out = append(out, u)
		}
	}
	return out
}
