// Package service holds the business logic behind the HTTP handlers:
// user account management, the product catalog, and order lines with
// their stock arithmetic. Services return *api.APIError for domain
// failures so handlers can translate them directly; anything else is an
// internal fault.
package service
