// Package migrations holds the schema migrations. Importing it for side
// effects registers each one with pkg/migration.
package migrations
