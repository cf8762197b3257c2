package dto

// AuthRequest carries the credentials for registration and login. The same
// payload shape serves both endpoints.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
