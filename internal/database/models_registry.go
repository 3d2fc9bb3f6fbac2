package database

import "socialnova/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// The order satisfies foreign key dependencies.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Realm{},
		&models.RealmMembership{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.SavedPost{},
		&models.Follow{},
	}
}
