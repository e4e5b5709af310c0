// internal/app/system/webjson/webjson.go
//
// Package webjson holds the request/response helpers shared by the JSON
// feature handlers.
package webjson

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrBadBody is returned by Decode for unparseable or oversized bodies.
var ErrBadBody = errors.New("invalid request body")

const maxBodyBytes = 1 << 20 // 1 MiB

// Write encodes v as the response with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a {"error": msg} body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]string{"error": msg})
}

// Decode reads the request body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadBody
	}
	return nil
}
