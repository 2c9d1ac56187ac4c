package webhook_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"autoremedy/internal/webhook"
)

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	payload := []byte(`{"action":"completed","workflow_run":{"id":1}}`)
	header := webhook.Sign(payload, secret)

	assert.True(t, webhook.VerifySignature(payload, header, secret))

	t.Run("payload bit flips", func(t *testing.T) {
		for i := range payload {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), payload...)
				mutated[i] ^= 1 << bit
				if webhook.VerifySignature(mutated, header, secret) {
					t.Fatalf("accepted payload with byte %d bit %d flipped", i, bit)
				}
			}
		}
	})

	t.Run("signature bit flips", func(t *testing.T) {
		for i := range header {
			for bit := 0; bit < 8; bit++ {
				mutated := []byte(header)
				mutated[i] ^= 1 << bit
				if webhook.VerifySignature(payload, string(mutated), secret) {
					t.Fatalf("accepted signature with byte %d bit %d flipped", i, bit)
				}
			}
		}
	})

	tests := []struct {
		name   string
		header string
		secret string
	}{
		{"missing header", "", secret},
		{"wrong prefix", strings.Replace(header, "sha256=", "sha1=", 1), secret},
		{"no prefix", strings.TrimPrefix(header, "sha256="), secret},
		{"bad hex", "sha256=zz" + header[9:], secret},
		{"truncated", header[:len(header)-2], secret},
		{"uppercase hex", "sha256=" + strings.ToUpper(header[7:]), secret},
		{"empty secret", webhook.Sign(payload, ""), ""},
		{"wrong secret", webhook.Sign(payload, "other"), secret},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, webhook.VerifySignature(payload, tc.header, tc.secret))
		})
	}
}

func TestValidateIPAddress(t *testing.T) {
	v := webhook.NewSecurityValidator(webhook.SecurityConfig{
		AllowedIPs: []string{"192.30.252.0/22", "10.0.0.7", "not-an-ip", "2001:db8::/32"},
	})

	assert.NoError(t, v.ValidateIPAddress("192.30.253.10"))
	assert.NoError(t, v.ValidateIPAddress("10.0.0.7"))
	assert.NoError(t, v.ValidateIPAddress("2001:db8::1"))

	for _, ip := range []string{"10.0.0.8", "8.8.8.8", "", "garbage"} {
		err := v.ValidateIPAddress(ip)
		assert.True(t, errors.Is(err, webhook.ErrIPNotAllowed), ip)
	}

	open := webhook.NewSecurityValidator(webhook.SecurityConfig{})
	assert.NoError(t, open.ValidateIPAddress("8.8.8.8"))
}

func TestCheckRateLimit(t *testing.T) {
	v := webhook.NewSecurityValidator(webhook.SecurityConfig{RateLimitPerMin: 20})

	// burst is a tenth of the per-minute rate
	assert.NoError(t, v.CheckRateLimit("github"))
	assert.NoError(t, v.CheckRateLimit("github"))
	assert.ErrorIs(t, v.CheckRateLimit("github"), webhook.ErrRateLimited)

	assert.NoError(t, v.CheckRateLimit("netlify"))
}

func TestSeenDelivery(t *testing.T) {
	v := webhook.NewSecurityValidator(webhook.SecurityConfig{})

	assert.False(t, v.SeenDelivery("abc"))
	assert.True(t, v.SeenDelivery("abc"))
	assert.False(t, v.SeenDelivery("def"))
	assert.False(t, v.SeenDelivery(""))
	assert.False(t, v.SeenDelivery(""))

	v.ForgetDelivery("abc")
	assert.False(t, v.SeenDelivery("abc"))
	assert.True(t, v.SeenDelivery("abc"))
	v.ForgetDelivery("")
}
