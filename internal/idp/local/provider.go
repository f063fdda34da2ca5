// Package local implementa idp.Provider en proceso. Reproduce el ciclo de vida
// de cuentas y los códigos de error de un user pool de Cognito para poder
// correr el servicio de punta a punta sin AWS.
package local

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

const (
	minPasswordLen = 8
	issuer         = "idpgate-local"
)

// Options configura el provider local.
type Options struct {
	ClientID     string
	ClientSecret string

	// SigningKey firma los access tokens (HS256). Si está vacío se genera uno
	// aleatorio y los tokens no sobreviven a un reinicio.
	SigningKey []byte

	TokenTTL   time.Duration
	CodeTTL    time.Duration
	HashParams HashParams

	Store  Store
	Sender CodeSender

	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

type Provider struct {
	clientID     string
	clientSecret string
	codeTTL      time.Duration
	hash         HashParams
	store        Store
	sender       CodeSender
	tokens       *tokenIssuer
	now          func() time.Time
}

var _ idp.Provider = (*Provider)(nil)

func New(opts Options) (*Provider, error) {
	if opts.ClientID == "" {
		return nil, errors.New("local idp: client id is required")
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Sender == nil {
		opts.Sender = LogSender{}
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 24 * time.Hour
	}
	if opts.HashParams == (HashParams{}) {
		opts.HashParams = DefaultHashParams
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.SigningKey) == 0 {
		opts.SigningKey = make([]byte, 32)
		if _, err := rand.Read(opts.SigningKey); err != nil {
			return nil, fmt.Errorf("local idp: signing key: %w", err)
		}
	}

	return &Provider{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		codeTTL:      opts.CodeTTL,
		hash:         opts.HashParams,
		store:        opts.Store,
		sender:       opts.Sender,
		now:          opts.Now,
		tokens: &tokenIssuer{
			key:      opts.SigningKey,
			issuer:   issuer,
			clientID: opts.ClientID,
			ttl:      opts.TokenTTL,
			now:      opts.Now,
		},
	}, nil
}

func (p *Provider) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("provider"), logger.Component("idp.local"), logger.Op(op))
}

func (p *Provider) checkSecretHash(username, secretHash string) *idp.Failure {
	if !secrethash.Verify(secretHash, username, p.clientID, p.clientSecret) {
		return idp.Reject(idp.CodeNotAuthorized, "Unable to verify secret hash for client "+p.clientID)
	}
	return nil
}

func (p *Provider) SignUp(ctx context.Context, email, username, password, secretHash string) (*idp.SignUpResult, error) {
	log := p.log(ctx, idp.OpSignUp).With(logger.Username(username))

	if f := p.checkSecretHash(username, secretHash); f != nil {
		return nil, f
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, idp.Reject(idp.CodeInvalidParameter, "Invalid email address format.")
	}
	if len(password) < minPasswordLen {
		return nil, idp.Reject(idp.CodeInvalidPassword, "Password did not conform with policy: Password not long enough")
	}

	phc, err := hashPassword(p.hash, password)
	if err != nil {
		log.Error("hash password failed", logger.Err(err))
		return nil, idp.Unavailable(err)
	}
	code, err := newCode()
	if err != nil {
		return nil, idp.Unavailable(err)
	}

	now := p.now()
	acc := &Account{
		Sub:           uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  phc,
		Code:          code,
		CodeExpiresAt: now.Add(p.codeTTL),
		CreatedAt:     now,
	}
	switch err := p.store.Create(ctx, acc); {
	case errors.Is(err, ErrExists):
		return nil, idp.Reject(idp.CodeUsernameExists, "User already exists")
	case err != nil:
		log.Error("store create failed", logger.Err(err))
		return nil, idp.Unavailable(err)
	}

	if err := p.sender.SendCode(ctx, email, username, code); err != nil {
		// sin código la cuenta queda inutilizable: rollback
		if derr := p.store.Delete(ctx, username); derr != nil {
			log.Error("rollback after delivery failure failed", logger.Err(derr))
		}
		return nil, idp.Reject("CodeDeliveryFailureException", "Unable to deliver the verification code.")
	}

	log.Info("account created")
	return &idp.SignUpResult{UserSub: acc.Sub, CodeDestination: maskEmail(email)}, nil
}

func (p *Provider) ConfirmSignUp(ctx context.Context, username, code, secretHash string) error {
	log := p.log(ctx, idp.OpConfirmSignUp).With(logger.Username(username))

	if f := p.checkSecretHash(username, secretHash); f != nil {
		return f
	}

	acc, err := p.store.Get(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return idp.Reject(idp.CodeUserNotFound, "Username/client id combination not found.")
	case err != nil:
		log.Error("store get failed", logger.Err(err))
		return idp.Unavailable(err)
	}

	if acc.Confirmed {
		return idp.Reject(idp.CodeNotAuthorized, "User cannot be confirmed. Current status is CONFIRMED")
	}
	if acc.Code == "" || acc.Code != code {
		return idp.Reject(idp.CodeCodeMismatch, "Invalid verification code provided, please try again.")
	}
	if p.now().After(acc.CodeExpiresAt) {
		return idp.Reject(idp.CodeExpiredCode, "Invalid code provided, please request a code again.")
	}

	acc.Confirmed = true
	acc.Code = ""
	acc.CodeExpiresAt = time.Time{}
	if err := p.store.Update(ctx, acc); err != nil {
		log.Error("store update failed", logger.Err(err))
		return idp.Unavailable(err)
	}

	log.Info("account confirmed")
	return nil
}

func (p *Provider) InitiateAuth(ctx context.Context, username, password, secretHash string) (*idp.AuthResult, error) {
	log := p.log(ctx, idp.OpInitiateAuth).With(logger.Username(username))

	if f := p.checkSecretHash(username, secretHash); f != nil {
		return nil, f
	}

	bad := idp.Reject(idp.CodeNotAuthorized, "Incorrect username or password.")

	acc, err := p.store.Get(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, bad
	case err != nil:
		log.Error("store get failed", logger.Err(err))
		return nil, idp.Unavailable(err)
	}
	if !verifyPassword(password, acc.PasswordHash) {
		return nil, bad
	}
	if !acc.Confirmed {
		return nil, idp.Reject(idp.CodeUserNotConfirmed, "User is not confirmed.")
	}

	tok, err := p.tokens.issue(acc)
	if err != nil {
		log.Error("sign token failed", logger.Err(err))
		return nil, idp.Unavailable(err)
	}

	return &idp.AuthResult{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int32(p.tokens.ttl / time.Second),
	}, nil
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	invalid := idp.Reject(idp.CodeNotAuthorized, "Invalid Access Token")

	claims, err := p.tokens.parse(accessToken)
	if err != nil {
		p.log(ctx, idp.OpGetUser).Debug("token rejected", logger.Err(err))
		return nil, invalid
	}

	acc, err := p.store.Get(ctx, claims.Username)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, idp.Reject(idp.CodeUserNotFound, "User does not exist.")
	case err != nil:
		return nil, idp.Unavailable(err)
	}
	if acc.Sub != claims.Subject {
		// usuario recreado con el mismo username
		return nil, invalid
	}

	return &idp.User{
		Username: acc.Username,
		Attributes: map[string]string{
			"sub":            acc.Sub,
			"email":          acc.Email,
			"email_verified": strconv.FormatBool(acc.Confirmed),
		},
	}, nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// maskEmail: alice@example.com -> a***@e***
func maskEmail(email string) string {
	at := -1
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			at = i
		}
	}
	if at <= 0 || at == len(email)-1 {
		return "***"
	}
	return email[:1] + "***@" + email[at+1:at+2] + "***"
}
