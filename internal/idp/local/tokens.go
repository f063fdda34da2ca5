package local

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenUseAccess = "access"

// AccessClaims imita el access token de un user pool.
type AccessClaims struct {
	Username string `json:"username"`
	ClientID string `json:"client_id"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	key      []byte
	issuer   string
	clientID string
	ttl      time.Duration
	now      func() time.Time
}

func (ti *tokenIssuer) issue(a *Account) (string, error) {
	now := ti.now()
	claims := AccessClaims{
		Username: a.Username,
		ClientID: ti.clientID,
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   a.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.key)
}

func (ti *tokenIssuer) parse(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return ti.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != tokenUseAccess {
		return nil, errors.New("token_use is not access")
	}
	if claims.ClientID != ti.clientID {
		return nil, errors.New("token issued for another client")
	}
	return claims, nil
}
