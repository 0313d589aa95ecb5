package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           string
	FullName     string
	PhoneNumber  string
	Email        *string
	PasswordHash []byte
	Role         UserRole
	IsActive     bool
	Region       string
	District     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
