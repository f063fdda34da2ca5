// Package handlers contiene los cuatro handlers de identidad en forma neutral
// al transporte: reciben un Request y siempre devuelven un Response bien
// formado. El servidor HTTP y la función Lambda sólo adaptan estos tipos.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	svc "github.com/dropDatabas3/idpgate/internal/http/services/auth"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

// Mensajes devueltos al cliente.
const (
	MsgAuthorized           = "Authorized"
	MsgMissingAuthorization = "Missing Authorization header"
	MsgUnauthorized         = "Unauthorized"

	MsgMissingBody        = "Missing body"
	MsgInvalidJSON        = "Invalid JSON body"
	MsgMissingCredentials = "Missing username or password"
	MsgInvalidCredentials = "Invalid username or password"
	MsgAuthFailed         = "Authentication failed"

	MsgMissingRegisterFields = "Missing email, username, or password"
	MsgUserCreated           = "User created"
	MsgRegisterFailed        = "User registration failed"

	MsgMissingConfirmFields = "Missing username or code"
	MsgUserConfirmed        = "User confirmed"
	MsgConfirmFailed        = "Confirmation failed"
)

// Nombres de operación, usados por el router Lambda y en logs.
const (
	OpAuthorize    = "authorize"
	OpAuthenticate = "authenticate"
	OpRegister     = "register"
	OpConfirm      = "confirm"
)

// Request es la entrada de un handler. Body nil significa sin body.
type Request struct {
	Headers map[string]string
	Body    *string
}

// Header busca name sin distinguir mayúsculas.
func (r Request) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Response es la salida de un handler. Body es dto.MessageResponse o
// dto.TokenResponse.
type Response struct {
	StatusCode int
	Body       any
}

func message(status int, msg string) Response {
	return Response{StatusCode: status, Body: dto.MessageResponse{Message: msg}}
}

// Func es la firma común de los handlers.
type Func func(ctx context.Context, req Request) Response

// Handlers agrupa los handlers de identidad.
type Handlers struct {
	svc svc.Services
}

func New(s svc.Services) *Handlers {
	return &Handlers{svc: s}
}

// ByName devuelve el handler de la operación op.
func (h *Handlers) ByName(op string) (Func, bool) {
	switch strings.ToLower(op) {
	case OpAuthorize:
		return h.Authorize, true
	case OpAuthenticate:
		return h.Authenticate, true
	case OpRegister:
		return h.Register, true
	case OpConfirm:
		return h.Confirm, true
	}
	return nil, false
}

func (h *Handlers) Authorize(ctx context.Context, req Request) Response {
	authz, ok := req.Header("Authorization")
	if !ok || strings.TrimSpace(authz) == "" {
		return message(http.StatusUnauthorized, MsgMissingAuthorization)
	}

	if _, err := h.svc.Authorize.Authorize(ctx, authz); err != nil {
		if errors.Is(err, svc.ErrMalformedAuthorization) {
			return message(http.StatusUnauthorized, MsgUnauthorized)
		}
		return message(http.StatusUnauthorized, idp.ReasonOr(err, MsgUnauthorized))
	}
	return message(http.StatusOK, MsgAuthorized)
}

func (h *Handlers) Authenticate(ctx context.Context, req Request) Response {
	var in dto.AuthenticateRequest
	if resp, ok := decodeBody(ctx, req, &in); !ok {
		return resp
	}

	out, err := h.svc.Authenticate.Authenticate(ctx, in)
	switch {
	case err == nil:
		return Response{StatusCode: http.StatusOK, Body: *out}
	case errors.Is(err, svc.ErrMissingCredentials):
		return message(http.StatusBadRequest, MsgMissingCredentials)
	case errors.Is(err, svc.ErrNoAccessToken):
		return message(http.StatusBadRequest, MsgInvalidCredentials)
	default:
		return message(http.StatusBadRequest, idp.ReasonOr(err, MsgAuthFailed))
	}
}

func (h *Handlers) Register(ctx context.Context, req Request) Response {
	var in dto.RegisterRequest
	if resp, ok := decodeBody(ctx, req, &in); !ok {
		return resp
	}

	switch err := h.svc.Register.Register(ctx, in); {
	case err == nil:
		return message(http.StatusOK, MsgUserCreated)
	case errors.Is(err, svc.ErrMissingRegisterFields):
		return message(http.StatusBadRequest, MsgMissingRegisterFields)
	default:
		return message(http.StatusBadRequest, idp.ReasonOr(err, MsgRegisterFailed))
	}
}

func (h *Handlers) Confirm(ctx context.Context, req Request) Response {
	var in dto.ConfirmRequest
	if resp, ok := decodeBody(ctx, req, &in); !ok {
		return resp
	}

	switch err := h.svc.Confirm.Confirm(ctx, in); {
	case err == nil:
		return message(http.StatusOK, MsgUserConfirmed)
	case errors.Is(err, svc.ErrMissingConfirmFields):
		return message(http.StatusBadRequest, MsgMissingConfirmFields)
	default:
		return message(http.StatusBadRequest, idp.ReasonOr(err, MsgConfirmFailed))
	}
}

// decodeBody parsea el body JSON en v. Tolera campos desconocidos.
func decodeBody(ctx context.Context, req Request, v any) (Response, bool) {
	if req.Body == nil || strings.TrimSpace(*req.Body) == "" {
		return message(http.StatusBadRequest, MsgMissingBody), false
	}
	if err := json.Unmarshal([]byte(*req.Body), v); err != nil {
		logger.From(ctx).Debug("invalid json body", logger.Layer("handler"), logger.Err(err))
		return message(http.StatusBadRequest, MsgInvalidJSON), false
	}
	return Response{}, true
}
