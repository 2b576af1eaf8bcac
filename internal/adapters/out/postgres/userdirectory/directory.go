// Package userdirectory resolves notification recipients from the users
// table. The table belongs to the identity service; this package only reads it.
package userdirectory

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// UserDTO is the subset of the users row needed for notifications.
type UserDTO struct {
	ID    string `gorm:"type:varchar(128);primaryKey"`
	Email string `gorm:"type:varchar(255)"`
	Name  string `gorm:"type:varchar(255)"`
}

func (UserDTO) TableName() string {
	return "users"
}

type GormUserDirectory struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// Get returns errs.ErrObjectNotFound for unknown users.
func (d *GormUserDirectory) Get(ctx context.Context, userID kernel.UserID) (ports.Recipient, error) {
	if err := userID.Validate(); err != nil {
		return ports.Recipient{}, err
	}

	var dto UserDTO
	err := d.db.WithContext(ctx).
		Select("id", "email", "name").
		First(&dto, "id = ?", userID.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Recipient{}, errs.NewObjectNotFoundError("user", userID.String())
		}
		return ports.Recipient{}, err
	}

	return ports.Recipient{ID: kernel.UserID(dto.ID), Email: dto.Email, Name: dto.Name}, nil
}
