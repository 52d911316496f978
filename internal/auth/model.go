package auth

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string         `gorm:"size:100;not null;column:firstname" json:"firstname"`
	LastName  string         `gorm:"size:100;not null;column:lastname" json:"lastname"`
	Email     string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"size:50;not null" json:"role"`
	Domains   pq.StringArray `gorm:"type:text[];column:domains" json:"domains"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type RegisterRequest struct {
	FirstName string   `json:"firstname" binding:"required"`
	LastName  string   `json:"lastname" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	Role      string   `json:"role"`
	Domains   []string `json:"domains"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
