// Package api defines the boundary to the remote DNS platform. The
// reconcile engine consumes this contract; api/ns1 implements it over the
// NS1 REST API.
package api

import (
	"context"

	"github.com/ns1-tools/ns1-sync/resource"
)

// Client is the remote platform collaborator. Get on an unknown resource
// fails with a NotFound error, which the engine treats as "absent" rather
// than a failure. Create and Update return the server's resulting document.
type Client interface {
	GetZone(ctx context.Context, zone string) (resource.Doc, error)
	CreateZone(ctx context.Context, zone string, doc resource.Doc) (resource.Doc, error)
	UpdateZone(ctx context.Context, zone string, doc resource.Doc) (resource.Doc, error)
	DeleteZone(ctx context.Context, zone string) error

	GetRecord(ctx context.Context, zone, domain, rtype string) (resource.Doc, error)
	CreateRecord(ctx context.Context, zone, domain, rtype string, doc resource.Doc) (resource.Doc, error)
	UpdateRecord(ctx context.Context, zone, domain, rtype string, doc resource.Doc) (resource.Doc, error)
	DeleteRecord(ctx context.Context, zone, domain, rtype string) error

	GetKey(ctx context.Context, name string) (resource.Doc, error)
	CreateKey(ctx context.Context, name string, doc resource.Doc) (resource.Doc, error)
	UpdateKey(ctx context.Context, name string, doc resource.Doc) (resource.Doc, error)
	DeleteKey(ctx context.Context, name string) error
}
