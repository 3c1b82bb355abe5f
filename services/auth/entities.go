package main

import "errors"

var (
	ErrMissingCredentials = errors.New("missing username or password")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credentials is the slice of a customer row needed to log in.
type Credentials struct {
	Username     string
	PasswordHash string
	Role         string
}
