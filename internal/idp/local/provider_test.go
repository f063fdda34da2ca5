package local

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/security/secrethash"
)

const (
	testClientID = "client-1"
	testSecret   = "s3cr3t"
)

// fast argon2 para tests
var testHash = HashParams{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (c *captureSender) SendCode(_ context.Context, _, username, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.codes == nil {
		c.codes = map[string]string{}
	}
	c.codes[username] = code
	return nil
}

func (c *captureSender) code(username string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[username]
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestProvider(t *testing.T) (*Provider, *captureSender, *clock) {
	t.Helper()
	sender := &captureSender{}
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	p, err := New(Options{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		SigningKey:   []byte("0123456789abcdef0123456789abcdef"),
		TokenTTL:     time.Hour,
		CodeTTL:      10 * time.Minute,
		HashParams:   testHash,
		Sender:       sender,
		Now:          clk.Now,
	})
	require.NoError(t, err)
	return p, sender, clk
}

func proof(username string) string {
	return secrethash.Compute(username, testClientID, testSecret)
}

func failureCode(t *testing.T, err error) string {
	t.Helper()
	var f *idp.Failure
	require.ErrorAs(t, err, &f)
	return f.Code
}

func TestLifecycle_SignUpConfirmAuthGetUser(t *testing.T) {
	p, sender, _ := newTestProvider(t)
	ctx := context.Background()

	res, err := p.SignUp(ctx, "alice@example.com", "alice", "password123", proof("alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserSub)
	assert.False(t, res.UserConfirmed)
	assert.Equal(t, "a***@e***", res.CodeDestination)

	code := sender.code("alice")
	require.Len(t, code, 6)

	_, err = p.InitiateAuth(ctx, "alice", "password123", proof("alice"))
	assert.Equal(t, idp.CodeUserNotConfirmed, failureCode(t, err))

	require.NoError(t, p.ConfirmSignUp(ctx, "alice", code, proof("alice")))

	auth, err := p.InitiateAuth(ctx, "alice", "password123", proof("alice"))
	require.NoError(t, err)
	require.NotEmpty(t, auth.AccessToken)
	assert.EqualValues(t, 3600, auth.ExpiresIn)

	u, err := p.GetUser(ctx, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, res.UserSub, u.Attributes["sub"])
	assert.Equal(t, "alice@example.com", u.Attributes["email"])
	assert.Equal(t, "true", u.Attributes["email_verified"])
}

func TestSignUp_Rejections(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "bob@example.com", "bob", "password123", "bogus")
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, err))

	_, err = p.SignUp(ctx, "not-an-email", "bob", "password123", proof("bob"))
	assert.Equal(t, idp.CodeInvalidParameter, failureCode(t, err))

	_, err = p.SignUp(ctx, "bob@example.com", "bob", "short", proof("bob"))
	assert.Equal(t, idp.CodeInvalidPassword, failureCode(t, err))

	_, err = p.SignUp(ctx, "bob@example.com", "bob", "password123", proof("bob"))
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "bob2@example.com", "bob", "password123", proof("bob"))
	assert.Equal(t, idp.CodeUsernameExists, failureCode(t, err))
	assert.Equal(t, "User already exists", idp.ReasonOr(err, ""))
}

func TestSignUp_DeliveryFailureRollsBack(t *testing.T) {
	p, sender, _ := newTestProvider(t)
	ctx := context.Background()
	sender.err = errors.New("smtp down")

	_, err := p.SignUp(ctx, "carol@example.com", "carol", "password123", proof("carol"))
	require.Error(t, err)

	sender.err = nil
	_, err = p.SignUp(ctx, "carol@example.com", "carol", "password123", proof("carol"))
	require.NoError(t, err, "account must not linger after a failed delivery")
}

func TestConfirmSignUp_Rejections(t *testing.T) {
	p, sender, clk := newTestProvider(t)
	ctx := context.Background()

	err := p.ConfirmSignUp(ctx, "ghost", "123456", proof("ghost"))
	assert.Equal(t, idp.CodeUserNotFound, failureCode(t, err))

	_, err = p.SignUp(ctx, "dave@example.com", "dave", "password123", proof("dave"))
	require.NoError(t, err)
	code := sender.code("dave")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = p.ConfirmSignUp(ctx, "dave", wrong, proof("dave"))
	assert.Equal(t, idp.CodeCodeMismatch, failureCode(t, err))
	assert.Equal(t, "Invalid verification code provided, please try again.", idp.ReasonOr(err, ""))

	clk.t = clk.t.Add(11 * time.Minute)
	err = p.ConfirmSignUp(ctx, "dave", code, proof("dave"))
	assert.Equal(t, idp.CodeExpiredCode, failureCode(t, err))
}

func TestConfirmSignUp_AlreadyConfirmed(t *testing.T) {
	p, sender, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "erin@example.com", "erin", "password123", proof("erin"))
	require.NoError(t, err)
	code := sender.code("erin")
	require.NoError(t, p.ConfirmSignUp(ctx, "erin", code, proof("erin")))

	err = p.ConfirmSignUp(ctx, "erin", code, proof("erin"))
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, err))
}

func TestInitiateAuth_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	p, sender, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "frank@example.com", "frank", "password123", proof("frank"))
	require.NoError(t, err)
	require.NoError(t, p.ConfirmSignUp(ctx, "frank", sender.code("frank"), proof("frank")))

	_, errWrong := p.InitiateAuth(ctx, "frank", "password124", proof("frank"))
	_, errUnknown := p.InitiateAuth(ctx, "nobody", "password123", proof("nobody"))

	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, errWrong))
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, errUnknown))
	assert.Equal(t, idp.ReasonOr(errWrong, ""), idp.ReasonOr(errUnknown, ""))
}

func TestGetUser_RejectsBadTokens(t *testing.T) {
	p, sender, clk := newTestProvider(t)
	ctx := context.Background()

	_, err := p.GetUser(ctx, "not-a-jwt")
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, err))
	assert.Equal(t, "Invalid Access Token", idp.ReasonOr(err, ""))

	_, err = p.SignUp(ctx, "gina@example.com", "gina", "password123", proof("gina"))
	require.NoError(t, err)
	require.NoError(t, p.ConfirmSignUp(ctx, "gina", sender.code("gina"), proof("gina")))
	auth, err := p.InitiateAuth(ctx, "gina", "password123", proof("gina"))
	require.NoError(t, err)

	other, err := New(Options{
		ClientID:   testClientID,
		SigningKey: []byte("another-key-another-key-another-"),
		HashParams: testHash,
		Now:        clk.Now,
	})
	require.NoError(t, err)
	_, err = other.GetUser(ctx, auth.AccessToken)
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, err), "foreign signature")

	clk.t = clk.t.Add(2 * time.Hour)
	_, err = p.GetUser(ctx, auth.AccessToken)
	assert.Equal(t, idp.CodeNotAuthorized, failureCode(t, err), "expired")
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	phc, err := hashPassword(testHash, "correct horse")
	require.NoError(t, err)
	assert.True(t, verifyPassword("correct horse", phc))
	assert.False(t, verifyPassword("correct horsE", phc))
	assert.False(t, verifyPassword("correct horse", "$argon2id$garbage"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@e***", maskEmail("alice@example.com"))
	assert.Equal(t, "***", maskEmail("@x"))
	assert.Equal(t, "***", maskEmail("x@"))
}
