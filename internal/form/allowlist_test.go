package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderAllowed(t *testing.T) {
	allowed := []string{
		"ada@gmail.com",
		"ada@GMAIL.COM",
		"first.last+tag@protonmail.com",
		"weird@name@outlook.com",
		"ada@gmx.com.",
	}
	for _, email := range allowed {
		assert.True(t, ProviderAllowed(email), email)
	}

	rejected := []string{
		"ada@example.com",
		"ada@gmail.co.uk",
		"ada@mail.gmail.com",
		"ada@gmail.com.evil.io",
		"gmail.com",
		"ada@",
		"ada@gmaıl.com",
	}
	for _, email := range rejected {
		assert.False(t, ProviderAllowed(email), email)
	}
}

func TestEmailDomain(t *testing.T) {
	d, ok := EmailDomain("user@Bücher.example")
	assert.True(t, ok)
	assert.Equal(t, "xn--bcher-kva.example", d)

	_, ok = EmailDomain("no-at-sign")
	assert.False(t, ok)
}

func TestProviderError(t *testing.T) {
	assert.Equal(t,
		"Supported email providers are gmail.com, outlook.com, yahoo.com, zoho.com, protonmail.com, aol.com, yandex.com, icloud.com, fastmail.com, gmx.com",
		ProviderError())
}
