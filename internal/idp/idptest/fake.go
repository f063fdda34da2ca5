// Package idptest provee un idp.Provider programable para tests.
package idptest

import (
	"context"
	"sync"

	"github.com/dropDatabas3/idpgate/internal/idp"
)

// Call registra una invocación al provider.
type Call struct {
	Op         string
	Token      string
	Email      string
	Username   string
	Password   string
	Code       string
	SecretHash string
}

// Fake responde con las funciones configuradas. Una función nil devuelve un
// resultado exitoso vacío.
type Fake struct {
	GetUserFn       func(accessToken string) (*idp.User, error)
	InitiateAuthFn  func(username, password string) (*idp.AuthResult, error)
	SignUpFn        func(email, username, password string) (*idp.SignUpResult, error)
	ConfirmSignUpFn func(username, code string) error

	mu    sync.Mutex
	calls []Call
}

var _ idp.Provider = (*Fake)(nil)

func (f *Fake) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// Calls devuelve una copia de las invocaciones registradas.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) GetUser(_ context.Context, accessToken string) (*idp.User, error) {
	f.record(Call{Op: idp.OpGetUser, Token: accessToken})
	if f.GetUserFn != nil {
		return f.GetUserFn(accessToken)
	}
	return &idp.User{}, nil
}

func (f *Fake) InitiateAuth(_ context.Context, username, password, secretHash string) (*idp.AuthResult, error) {
	f.record(Call{Op: idp.OpInitiateAuth, Username: username, Password: password, SecretHash: secretHash})
	if f.InitiateAuthFn != nil {
		return f.InitiateAuthFn(username, password)
	}
	return &idp.AuthResult{}, nil
}

func (f *Fake) SignUp(_ context.Context, email, username, password, secretHash string) (*idp.SignUpResult, error) {
	f.record(Call{Op: idp.OpSignUp, Email: email, Username: username, Password: password, SecretHash: secretHash})
	if f.SignUpFn != nil {
		return f.SignUpFn(email, username, password)
	}
	return &idp.SignUpResult{}, nil
}

func (f *Fake) ConfirmSignUp(_ context.Context, username, code, secretHash string) error {
	f.record(Call{Op: idp.OpConfirmSignUp, Username: username, Code: code, SecretHash: secretHash})
	if f.ConfirmSignUpFn != nil {
		return f.ConfirmSignUpFn(username, code)
	}
	return nil
}
