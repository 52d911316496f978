package auth

import "research-hub-api/internal/logs"

type AuthServicePort interface {
	CreateUser(user User) (*User, error)
	GetUser(email string) (*User, error)
	GetUserByID(id uint) (*User, error)
	GetAllUsers() ([]User, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, metadata interface{}) error
}
