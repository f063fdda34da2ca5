package lambda

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/dropDatabas3/idpgate/internal/http/handlers"
)

// EnvOperation fija la operación cuando cada handler se despliega como una
// función separada.
const EnvOperation = "LAMBDA_OPERATION"

// Start bloquea atendiendo invocaciones. No retorna.
func Start(h *handlers.Handlers, op string) {
	awslambda.Start(New(h, op).Handle)
}
