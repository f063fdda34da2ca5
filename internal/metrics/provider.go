package metrics

import (
	"context"
	"time"

	"github.com/dropDatabas3/idpgate/internal/idp"
)

// Outcomes de una llamada al provider.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type instrumentedProvider struct {
	next idp.Provider
}

// InstrumentProvider decora p con contadores y latencias por operación.
func InstrumentProvider(p idp.Provider) idp.Provider {
	return &instrumentedProvider{next: p}
}

func observeProvider(op string, start time.Time, err error) {
	ProviderCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	ProviderCallsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if f := idp.AsFailure(err); f.Code != "" {
		return OutcomeRejected
	}
	return OutcomeError
}

func (p *instrumentedProvider) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	start := time.Now()
	u, err := p.next.GetUser(ctx, accessToken)
	observeProvider(idp.OpGetUser, start, err)
	return u, err
}

func (p *instrumentedProvider) InitiateAuth(ctx context.Context, username, password, secretHash string) (*idp.AuthResult, error) {
	start := time.Now()
	res, err := p.next.InitiateAuth(ctx, username, password, secretHash)
	observeProvider(idp.OpInitiateAuth, start, err)
	return res, err
}

func (p *instrumentedProvider) SignUp(ctx context.Context, email, username, password, secretHash string) (*idp.SignUpResult, error) {
	start := time.Now()
	res, err := p.next.SignUp(ctx, email, username, password, secretHash)
	observeProvider(idp.OpSignUp, start, err)
	return res, err
}

func (p *instrumentedProvider) ConfirmSignUp(ctx context.Context, username, code, secretHash string) error {
	start := time.Now()
	err := p.next.ConfirmSignUp(ctx, username, code, secretHash)
	observeProvider(idp.OpConfirmSignUp, start, err)
	return err
}
