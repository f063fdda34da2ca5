package local

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// HashParams configura argon2id.
type HashParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var DefaultHashParams = HashParams{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// hashPassword devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<salt>$<dk>
func hashPassword(p HashParams, plain string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

func verifyPassword(plain, phc string) bool {
	var v, m, t, p int
	var rest string
	n, _ := fmt.Sscanf(phc, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &v, &m, &t, &p, &rest)
	if n != 5 || v != argon2.Version {
		return false
	}
	var saltB64, dkB64 string
	for i := 0; i < len(rest); i++ {
		if rest[i] == '$' {
			saltB64, dkB64 = rest[:i], rest[i+1:]
			break
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil || len(salt) == 0 {
		return false
	}
	dk, err := base64.RawStdEncoding.DecodeString(dkB64)
	if err != nil || len(dk) == 0 {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, uint32(t), uint32(m), uint8(p), uint32(len(dk)))
	return subtle.ConstantTimeCompare(key, dk) == 1
}
