// Package correlation carries the request id that ties logs and spans of one call together.
package correlation

import (
	"context"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Header is the request and response header holding the id.
const Header = "X-Request-Id"

type key struct{}

// FromContext returns the id stored on ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key{}).(string)
	return id
}

// WithID stores id on ctx. Blank ids leave ctx untouched.
func WithID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key{}, id)
}

// FromHeader reuses the caller's id when sent, otherwise mints one.
func FromHeader(h http.Header) string {
	if id := strings.TrimSpace(h.Get(Header)); id != "" {
		return id
	}
	return NewID()
}

// NewID returns a lexicographically sortable id.
func NewID() string {
	return ulid.Make().String()
}
