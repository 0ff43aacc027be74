package database

import "campusbridge/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.LikeEntry{},
		&models.School{},
		&models.Major{},
		&models.Report{},
		&models.Testimonial{},
	}
}
