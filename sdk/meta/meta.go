package meta

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// Envelope is the conventional wrapper the CPPE API places around every
// response payload.
type Envelope struct {
	// Success indicates whether the API considered the operation successful.
	Success bool `json:"success,omitempty"`
	// Message is an optional human-readable message, usually in French.
	Message string `json:"message,omitempty"`
	// Data is the raw payload. Typed clients decode it further.
	Data json.RawMessage `json:"data,omitempty"`
	// Meta carries pagination details for list operations.
	Meta *ListMeta `json:"meta,omitempty"`
}

// ObjectMeta represents metadata common to every back-office resource.
type ObjectMeta struct {
	// ID is an immutable resource identifier assigned by the API.
	ID int64 `json:"id,omitempty"`
	// Created indicates the time at which a resource was created. Clients must
	// leave this nil when creating or updating resources.
	Created *time.Time `json:"created_at,omitempty"`
	// LastUpdated indicates the time at which a resource was last updated.
	LastUpdated *time.Time `json:"updated_at,omitempty"`
}

// ListMeta is metadata for paginated collections of resources.
type ListMeta struct {
	CurrentPage int `json:"current_page,omitempty"`
	LastPage    int `json:"last_page,omitempty"`
	PerPage     int `json:"per_page,omitempty"`
	Total       int `json:"total,omitempty"`
}

// ListOptions represents the filtering and pagination options accepted by
// list operations. Zero values are omitted from the query string.
type ListOptions struct {
	Page    int
	PerPage int
	Search  string
	// Filters holds any additional resource-specific query parameters, e.g.
	// "statut" or "section".
	Filters map[string]string
}

// QueryParams renders the options as query string parameters.
func (l *ListOptions) QueryParams() map[string]string {
	params := map[string]string{}
	if l == nil {
		return params
	}
	if l.Page > 0 {
		params["page"] = strconv.Itoa(l.Page)
	}
	if l.PerPage > 0 {
		params["per_page"] = strconv.Itoa(l.PerPage)
	}
	if l.Search != "" {
		params["search"] = l.Search
	}
	for k, v := range l.Filters {
		if v != "" {
			params[k] = v
		}
	}
	return params
}

type locationContextKey struct{}

// ContextWithLocation returns a context recording the console location (the
// path of the page being served) on whose behalf API calls are made.
func ContextWithLocation(ctx context.Context, location string) context.Context {
	return context.WithValue(ctx, locationContextKey{}, location)
}

// LocationFromContext returns the console location recorded by
// ContextWithLocation, or an empty string if there is none.
func LocationFromContext(ctx context.Context) string {
	location, ok := ctx.Value(locationContextKey{}).(string)
	if !ok {
		return ""
	}
	return location
}
