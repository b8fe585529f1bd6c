package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const codeAttempts = 10

// GenerateCode draws random six digit codes until taken reports a free one.
// After codeAttempts collisions it falls back to the HHMMSS of now.
func GenerateCode(ctx context.Context, taken func(context.Context, string) (bool, error), now time.Time) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := fmt.Sprintf("%06d", rand.IntN(1_000_000))
		used, err := taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return now.Format("150405"), nil
}
