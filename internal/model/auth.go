package model

import "errors"

// LoginRequest is the body of the login gate.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse reports the outcome of the gate. No session is issued.
type LoginResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)
