// Package cognito implements idp.Provider on top of an Amazon Cognito user
// pool app client.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	"github.com/dropDatabas3/idpgate/internal/config"
	"github.com/dropDatabas3/idpgate/internal/idp"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

// API is the subset of the Cognito client used here. Tests replace it.
type API interface {
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
}

// Provider talks to Cognito on behalf of one app client.
type Provider struct {
	api      API
	clientID string
	timeout  time.Duration
}

var _ idp.Provider = (*Provider)(nil)

// New loads AWS credentials from the default chain (env, shared config, IAM
// role of the Lambda/ECS task) and builds the provider.
func New(ctx context.Context, cfg config.IDP) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("cognito: load aws config: %w", err)
	}

	client := cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client, cfg.ClientID, cfg.Timeout), nil
}

// NewWithAPI builds the provider around an existing client.
func NewWithAPI(api API, clientID string, timeout time.Duration) *Provider {
	return &Provider{api: api, clientID: clientID, timeout: timeout}
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return nil, toFailure(ctx, idp.OpGetUser, err)
	}

	u := &idp.User{
		Username:   aws.ToString(out.Username),
		Attributes: make(map[string]string, len(out.UserAttributes)),
	}
	for _, a := range out.UserAttributes {
		u.Attributes[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	return u, nil
}

func (p *Provider) InitiateAuth(ctx context.Context, username, password, secretHash string) (*idp.AuthResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME":    username,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	})
	if err != nil {
		return nil, toFailure(ctx, idp.OpInitiateAuth, err)
	}

	res := &idp.AuthResult{ChallengeName: string(out.ChallengeName)}
	if ar := out.AuthenticationResult; ar != nil {
		res.AccessToken = aws.ToString(ar.AccessToken)
		res.IDToken = aws.ToString(ar.IdToken)
		res.RefreshToken = aws.ToString(ar.RefreshToken)
		res.TokenType = aws.ToString(ar.TokenType)
		res.ExpiresIn = ar.ExpiresIn
	}
	return res, nil
}

func (p *Provider) SignUp(ctx context.Context, email, username, password, secretHash string) (*idp.SignUpResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	out, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return nil, toFailure(ctx, idp.OpSignUp, err)
	}

	res := &idp.SignUpResult{
		UserSub:       aws.ToString(out.UserSub),
		UserConfirmed: out.UserConfirmed,
	}
	if d := out.CodeDeliveryDetails; d != nil {
		res.CodeDestination = aws.ToString(d.Destination)
	}
	return res, nil
}

func (p *Provider) ConfirmSignUp(ctx context.Context, username, code, secretHash string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       aws.String(secretHash),
	})
	if err != nil {
		return toFailure(ctx, idp.OpConfirmSignUp, err)
	}
	return nil
}

// toFailure maps SDK errors. Service exceptions carry a message meant for the
// end user; everything else (network, credentials, timeouts) is logged and
// surfaced without a reason.
func toFailure(ctx context.Context, op string, err error) *idp.Failure {
	log := logger.From(ctx).With(logger.Layer("provider"), logger.Component("idp.cognito"), logger.Op(op))

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		log.Debug("provider rejected request", logger.ProviderCode(apiErr.ErrorCode()))
		return &idp.Failure{Code: apiErr.ErrorCode(), Reason: apiErr.ErrorMessage(), Err: err}
	}

	log.Warn("provider call failed", logger.Err(err))
	return idp.Unavailable(err)
}
