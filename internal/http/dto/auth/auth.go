// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// AuthenticateRequest es el body de POST /authenticate.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest es el body de POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ConfirmRequest es el body de POST /confirm.
type ConfirmRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// MessageResponse es la respuesta de todos los endpoints salvo el login exitoso.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse es la respuesta exitosa de /authenticate.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
