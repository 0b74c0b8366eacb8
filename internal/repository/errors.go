package repository

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps gorm's dialect-neutral errors onto a domain sentinel.
// The connection must be opened with gorm.Config.TranslateError.
func translate(err error, notFound, duplicate, fkViolated error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && duplicate != nil:
		return duplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated) && fkViolated != nil:
		return fkViolated
	}
	return err
}

func pageScope(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC").Offset(offset).Limit(limit)
	}
}
