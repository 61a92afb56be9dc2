// Package view holds the templ components for the admin dashboard.
package view

// CatalogStats summarises the catalog for the dashboard header.
type CatalogStats struct {
	Hoodies  int
	Products int
}
