package repository

import (
	"clipstream/internal/database"

	"gorm.io/gorm"
)

// readDB routes staleness-tolerant queries to the read replica when one
// is configured. Auth-critical reads (password hashes, refresh tokens)
// must stay on the primary; replica lag there would reject valid logins
// and rotations.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}
