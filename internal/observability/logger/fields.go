package logger

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func DurationMs(v time.Duration) zap.Field { return zap.Int64("duration_ms", v.Milliseconds()) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - IDENTIDAD
// =================================================================================

// Username identifica al usuario final. Nunca loguear el password junto a él.
func Username(v string) zap.Field { return zap.String("username", v) }

// ClientID crea un campo para el app client del identity provider.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// ProviderCode es el código de error devuelto por el identity provider.
func ProviderCode(v string) zap.Field { return zap.String("provider_code", v) }

// Redacted deja constancia de que un valor existe sin exponerlo.
func Redacted(key, v string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(v))+"]")
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (handler, service, provider).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
