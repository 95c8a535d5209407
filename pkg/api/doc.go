// Package api defines the wire-level types of the tienda resource API:
// the catalog, order, and user DTOs exchanged with clients, and the
// structured error envelope returned on every failure path.
//
// Types here are transport-shaped, not storage-shaped. Persistence lives
// in pkg/storage; business rules in pkg/service.
package api
