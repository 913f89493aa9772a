package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded schema for the users and auth_activity
// tables, so deployments can apply it without shipping loose SQL files.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
