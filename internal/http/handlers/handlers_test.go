package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	svc "github.com/dropDatabas3/idpgate/internal/http/services/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/idp/idptest"
	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

func newHandlers(f *idptest.Fake) *Handlers {
	return New(svc.NewServices(svc.Deps{
		Provider: f,
		Proofs:   secrethash.NewDeriver("client-1", "secret-1"),
	}))
}

func body(s string) *string { return &s }

func assertMessage(t *testing.T, resp Response, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	assert.Equal(t, dto.MessageResponse{Message: msg}, resp.Body)
}

func TestRequestHeader_CaseInsensitive(t *testing.T) {
	req := Request{Headers: map[string]string{"authorization": "Bearer x"}}
	v, ok := req.Header("Authorization")
	assert.True(t, ok)
	assert.Equal(t, "Bearer x", v)

	_, ok = Request{}.Header("Authorization")
	assert.False(t, ok)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		headers   map[string]string
		getUser   func(string) (*idp.User, error)
		status    int
		msg       string
		wantCalls int
	}{
		{
			name:    "missing header",
			headers: map[string]string{},
			status:  http.StatusUnauthorized,
			msg:     "Missing Authorization header",
		},
		{
			name:    "empty header",
			headers: map[string]string{"Authorization": "  "},
			status:  http.StatusUnauthorized,
			msg:     "Missing Authorization header",
		},
		{
			name:    "not bearer",
			headers: map[string]string{"Authorization": "Basic abc"},
			status:  http.StatusUnauthorized,
			msg:     "Unauthorized",
		},
		{
			name:      "valid token lower-case header",
			headers:   map[string]string{"authorization": "Bearer good"},
			status:    http.StatusOK,
			msg:       "Authorized",
			wantCalls: 1,
		},
		{
			name:    "provider reason",
			headers: map[string]string{"Authorization": "Bearer expired"},
			getUser: func(string) (*idp.User, error) {
				return nil, idp.Reject(idp.CodeNotAuthorized, "Access Token has expired")
			},
			status:    http.StatusUnauthorized,
			msg:       "Access Token has expired",
			wantCalls: 1,
		},
		{
			name:    "success without profile",
			headers: map[string]string{"Authorization": "Bearer good"},
			getUser: func(string) (*idp.User, error) {
				return nil, nil
			},
			status:    http.StatusOK,
			msg:       "Authorized",
			wantCalls: 1,
		},
		{
			name:    "failure without reason",
			headers: map[string]string{"Authorization": "Bearer x"},
			getUser: func(string) (*idp.User, error) {
				return nil, errors.New("connection reset")
			},
			status:    http.StatusUnauthorized,
			msg:       "Unauthorized",
			wantCalls: 1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &idptest.Fake{GetUserFn: c.getUser}
			resp := newHandlers(f).Authorize(ctx, Request{Headers: c.headers})
			assertMessage(t, resp, c.status, c.msg)
			assert.Len(t, f.Calls(), c.wantCalls)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing body", func(t *testing.T) {
		f := &idptest.Fake{}
		h := newHandlers(f)
		assertMessage(t, h.Authenticate(ctx, Request{}), http.StatusBadRequest, "Missing body")
		assertMessage(t, h.Authenticate(ctx, Request{Body: body("  ")}), http.StatusBadRequest, "Missing body")
		assert.Empty(t, f.Calls())
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := newHandlers(&idptest.Fake{}).Authenticate(ctx, Request{Body: body("{not json")})
		assertMessage(t, resp, http.StatusBadRequest, "Invalid JSON body")
	})

	t.Run("missing password", func(t *testing.T) {
		f := &idptest.Fake{}
		resp := newHandlers(f).Authenticate(ctx, Request{Body: body(`{"username":"alice"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Missing username or password")
		assert.Empty(t, f.Calls())
	})

	t.Run("success returns accessToken", func(t *testing.T) {
		f := &idptest.Fake{InitiateAuthFn: func(string, string) (*idp.AuthResult, error) {
			return &idp.AuthResult{AccessToken: "eyJ.token"}, nil
		}}
		resp := newHandlers(f).Authenticate(ctx, Request{Body: body(`{"username":"alice","password":"pw"}`)})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, dto.TokenResponse{AccessToken: "eyJ.token"}, resp.Body)

		calls := f.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, secrethash.Compute("alice", "client-1", "secret-1"), calls[0].SecretHash)
	})

	t.Run("success without token", func(t *testing.T) {
		f := &idptest.Fake{InitiateAuthFn: func(string, string) (*idp.AuthResult, error) {
			return &idp.AuthResult{ChallengeName: "SMS_MFA"}, nil
		}}
		resp := newHandlers(f).Authenticate(ctx, Request{Body: body(`{"username":"alice","password":"pw"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Invalid username or password")
	})

	t.Run("provider reason", func(t *testing.T) {
		f := &idptest.Fake{InitiateAuthFn: func(string, string) (*idp.AuthResult, error) {
			return nil, idp.Reject(idp.CodeNotAuthorized, "Incorrect username or password.")
		}}
		resp := newHandlers(f).Authenticate(ctx, Request{Body: body(`{"username":"alice","password":"bad"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Incorrect username or password.")
	})

	t.Run("failure without reason", func(t *testing.T) {
		f := &idptest.Fake{InitiateAuthFn: func(string, string) (*idp.AuthResult, error) {
			return nil, idp.Unavailable(errors.New("timeout"))
		}}
		resp := newHandlers(f).Authenticate(ctx, Request{Body: body(`{"username":"alice","password":"pw"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Authentication failed")
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("missing body", func(t *testing.T) {
		assertMessage(t, newHandlers(&idptest.Fake{}).Register(ctx, Request{}), http.StatusBadRequest, "Missing body")
	})

	t.Run("missing email", func(t *testing.T) {
		f := &idptest.Fake{}
		resp := newHandlers(f).Register(ctx, Request{Body: body(`{"username":"u","password":"p"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Missing email, username, or password")
		assert.Empty(t, f.Calls())
	})

	t.Run("created", func(t *testing.T) {
		f := &idptest.Fake{}
		resp := newHandlers(f).Register(ctx, Request{Body: body(`{"email":"u@x.com","username":"u","password":"p"}`)})
		assertMessage(t, resp, http.StatusOK, "User created")
		assert.Len(t, f.Calls(), 1)
	})

	t.Run("created without result", func(t *testing.T) {
		f := &idptest.Fake{SignUpFn: func(string, string, string) (*idp.SignUpResult, error) {
			return nil, nil
		}}
		var resp Response
		require.NotPanics(t, func() {
			resp = newHandlers(f).Register(ctx, Request{Body: body(`{"email":"u@x.com","username":"u","password":"p"}`)})
		})
		assertMessage(t, resp, http.StatusOK, "User created")
	})

	t.Run("provider reason", func(t *testing.T) {
		f := &idptest.Fake{SignUpFn: func(string, string, string) (*idp.SignUpResult, error) {
			return nil, idp.Reject(idp.CodeUsernameExists, "User already exists")
		}}
		resp := newHandlers(f).Register(ctx, Request{Body: body(`{"email":"u@x.com","username":"u","password":"p"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "User already exists")
	})

	t.Run("failure without reason", func(t *testing.T) {
		f := &idptest.Fake{SignUpFn: func(string, string, string) (*idp.SignUpResult, error) {
			return nil, errors.New("dns")
		}}
		resp := newHandlers(f).Register(ctx, Request{Body: body(`{"email":"u@x.com","username":"u","password":"p"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "User registration failed")
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("missing body", func(t *testing.T) {
		assertMessage(t, newHandlers(&idptest.Fake{}).Confirm(ctx, Request{Body: body("")}), http.StatusBadRequest, "Missing body")
	})

	t.Run("missing code", func(t *testing.T) {
		resp := newHandlers(&idptest.Fake{}).Confirm(ctx, Request{Body: body(`{"username":"u"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Missing username or code")
	})

	t.Run("confirmed", func(t *testing.T) {
		f := &idptest.Fake{}
		resp := newHandlers(f).Confirm(ctx, Request{Body: body(`{"username":"u","code":"123456"}`)})
		assertMessage(t, resp, http.StatusOK, "User confirmed")
		require.Len(t, f.Calls(), 1)
		assert.Equal(t, "123456", f.Calls()[0].Code)
	})

	t.Run("provider reason", func(t *testing.T) {
		f := &idptest.Fake{ConfirmSignUpFn: func(string, string) error {
			return idp.Reject(idp.CodeCodeMismatch, "Invalid verification code provided, please try again.")
		}}
		resp := newHandlers(f).Confirm(ctx, Request{Body: body(`{"username":"u","code":"1"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Invalid verification code provided, please try again.")
	})

	t.Run("failure without reason", func(t *testing.T) {
		f := &idptest.Fake{ConfirmSignUpFn: func(string, string) error {
			return idp.Reject(idp.CodeInternalError, "")
		}}
		resp := newHandlers(f).Confirm(ctx, Request{Body: body(`{"username":"u","code":"1"}`)})
		assertMessage(t, resp, http.StatusBadRequest, "Confirmation failed")
	})
}

func TestByName(t *testing.T) {
	h := newHandlers(&idptest.Fake{})
	for _, op := range []string{"authorize", "Authenticate", "REGISTER", "confirm"} {
		_, ok := h.ByName(op)
		assert.True(t, ok, op)
	}
	_, ok := h.ByName("delete")
	assert.False(t, ok)
}
