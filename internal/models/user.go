package models

// User represents the signed-in user's profile.
type User struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserName     string `json:"user_name"`
	UserID       int    `json:"user_id"`
	Email        string `json:"email"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	FullName        string `json:"full_name" validate:"required,max=100"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// ProfileUpdate is the body of PUT /users/me. Empty fields are left unchanged.
type ProfileUpdate struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
}

// PasswordChange is the body of PUT /users/me/password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// Message is the generic {"message": "..."} response body.
type Message struct {
	Message string `json:"message"`
}
