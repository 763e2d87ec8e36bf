package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxRunner runs a function inside one database transaction; the function's
// error rolls everything back. *gorm.DB satisfies it directly.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
