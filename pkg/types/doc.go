// Package types defines the Store and Table interfaces, the entity types
// (projects, notes, resources, ideas), the search hit union, and the
// standard errors for the karte record store.
package types
