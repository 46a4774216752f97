package models

// LoginRequest carries the single shared admin password. There is no user
// table; the hash it is compared against lives in configuration.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}
