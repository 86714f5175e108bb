package repository

import (
	"context"
	"strings"

	"petcare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Country = strings.ToUpper(strings.TrimSpace(u.Country))
	return r.db.WithContext(ctx).Create(u).Error
}

// Upsert creates the user or refreshes the profile of the user holding the
// same email.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Country = strings.ToUpper(strings.TrimSpace(u.Country))
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "phone", "country", "role", "updated_at"}),
	}).Create(u).Error; err != nil {
		return err
	}
	// the insert may have been skipped, so the generated id is not the stored one
	var stored domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", u.Email).First(&stored).Error; err != nil {
		return err
	}
	*u = stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, "user", id.String())
	}
	return &u, nil
}
