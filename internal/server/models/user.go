package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. Raw strings coming from tokens or
// requests must go through ParseRole; nothing else compares role strings.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a raw role string (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is an account row. PasswordHash is opaque and must never be logged or
// returned in a response body.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Rol          Role
	FullName     string
	Phone        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
