package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

// User is the slice of the marketplace profile that payments need:
// contact data for the payer and the country that routes gateway credentials.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	FirstName string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Country   string    `gorm:"type:varchar(2);index" json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
