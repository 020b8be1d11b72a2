// Package api is the typed catalogue of advisor backend endpoints. Each
// method builds a path, query and body, validates input that the user typed,
// and delegates the call to the HTTP client. Successful mutations publish an
// invalidation on the events bus so views showing the affected data reload.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"finadvisor/internal/client"
	"finadvisor/internal/events"
	"finadvisor/internal/session"
)

// API wraps a client with one method per backend capability.
type API struct {
	client  *client.Client
	session *session.Session
	bus     *events.Bus
}

// New creates an API over c. A nil bus disables invalidation signals.
func New(c *client.Client, bus *events.Bus) *API {
	if bus == nil {
		bus = events.New()
	}
	return &API{client: c, session: c.Session(), bus: bus}
}

// Session returns the session the API authenticates with.
func (a *API) Session() *session.Session { return a.session }

// Bus returns the bus mutations are published on.
func (a *API) Bus() *events.Bus { return a.bus }

func (a *API) get(ctx context.Context, path string, query url.Values, out any) error {
	return a.client.Do(ctx, client.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (a *API) post(ctx context.Context, path string, body, out any) error {
	return a.client.Do(ctx, client.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (a *API) put(ctx context.Context, path string, body, out any) error {
	return a.client.Do(ctx, client.Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (a *API) delete(ctx context.Context, path string) error {
	return a.client.Do(ctx, client.Request{Method: http.MethodDelete, Path: path}, nil)
}

// mutated publishes topics once a mutation succeeded.
func (a *API) mutated(err error, topics ...events.Topic) error {
	if err == nil {
		a.bus.Invalidate(topics...)
	}
	return err
}

func itemPath(collection string, id int) string {
	return collection + "/" + strconv.Itoa(id)
}
