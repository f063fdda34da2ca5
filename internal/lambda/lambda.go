// Package lambda adapta los handlers de identidad a API Gateway (proxy
// integration) sobre aws-lambda-go.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	dto "github.com/dropDatabas3/idpgate/internal/http/dto/auth"
	"github.com/dropDatabas3/idpgate/internal/http/handlers"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

// Adapter despacha eventos de API Gateway a los handlers.
type Adapter struct {
	h *handlers.Handlers
	// op fija la operación (una función por handler). Vacío = por path.
	op string
}

// New crea el adapter. op puede ser "" para despachar por el sufijo del path.
func New(h *handlers.Handlers, op string) *Adapter {
	return &Adapter{h: h, op: strings.ToLower(strings.TrimSpace(op))}
}

// Handle es la función registrada con lambda.Start.
func (a *Adapter) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	reqID := ev.RequestContext.RequestID
	if lc, ok := lambdacontext.FromContext(ctx); ok && reqID == "" {
		reqID = lc.AwsRequestID
	}
	if reqID == "" {
		reqID = uuid.NewString()
	}

	log := logger.L().With(
		logger.RequestID(reqID),
		logger.Method(ev.HTTPMethod),
		logger.Path(ev.Path),
	)
	ctx = logger.ToContext(ctx, log)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic recovered", logger.Op("recover"), logger.Any("panic", rec))
			resp = toProxyResponse(handlers.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       dto.MessageResponse{Message: "Internal server error"},
			}, reqID)
			err = nil
		}
	}()

	op := a.op
	if op == "" {
		op = operationFromPath(ev.Resource, ev.Path)
	}
	fn, ok := a.h.ByName(op)
	if !ok {
		log.Warn("no handler for event", logger.String("resource", ev.Resource))
		return toProxyResponse(handlers.Response{
			StatusCode: http.StatusNotFound,
			Body:       dto.MessageResponse{Message: "Not found"},
		}, reqID), nil
	}

	out := fn(ctx, toRequest(ev))
	log.Info("request completed", logger.Op(op), logger.Status(out.StatusCode))
	return toProxyResponse(out, reqID), nil
}

// operationFromPath toma el último segmento de resource (o path):
// "/prod/auth/authenticate" -> "authenticate".
func operationFromPath(resource, path string) string {
	p := resource
	if p == "" || strings.Contains(p, "{") {
		p = path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return strings.ToLower(p)
}

func toRequest(ev events.APIGatewayProxyRequest) handlers.Request {
	headers := make(map[string]string, len(ev.Headers)+len(ev.MultiValueHeaders))
	for k, v := range ev.MultiValueHeaders {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	for k, v := range ev.Headers {
		headers[k] = v
	}

	req := handlers.Request{Headers: headers}
	if ev.Body == "" {
		return req
	}
	body := ev.Body
	if ev.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			// se deja el body crudo: el handler responderá JSON inválido
			return handlers.Request{Headers: headers, Body: &body}
		}
		body = string(b)
	}
	req.Body = &body
	return req
}

func toProxyResponse(r handlers.Response, reqID string) events.APIGatewayProxyResponse {
	b, err := json.Marshal(r.Body)
	if err != nil {
		b = []byte(`{"message":"Internal server error"}`)
		r.StatusCode = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers: map[string]string{
			"Content-Type":  "application/json; charset=utf-8",
			"Cache-Control": "no-store",
			"X-Request-ID":  reqID,
		},
		Body: string(b),
	}
}
