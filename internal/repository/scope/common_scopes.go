package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// WithUnread keeps counters that still have something to acknowledge.
func WithUnread(db *gorm.DB) *gorm.DB {
	return db.Where("unread > 0")
}
