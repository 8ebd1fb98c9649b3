package option

import "gorm.io/gorm"

// QueryOption customizes a gorm statement built by the generic store.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithOrder(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset)
	})
}

func WithPreload(association string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Preload(association)
	})
}

func WithCondition(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
