package dto

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token               string       `json:"token"`
	User                UserResponse `json:"user"`
	ForcePasswordChange bool         `json:"force_password_change"`
}
