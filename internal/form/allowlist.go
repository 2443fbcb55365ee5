package form

import (
	"strings"

	"golang.org/x/net/idna"
)

// EmailProviders are the mailbox providers accepted at signup.
var EmailProviders = []string{
	"gmail.com",
	"outlook.com",
	"yahoo.com",
	"zoho.com",
	"protonmail.com",
	"aol.com",
	"yandex.com",
	"icloud.com",
	"fastmail.com",
	"gmx.com",
}

// EmailDomain returns the normalized domain of an address: the part after the
// last '@', converted to its ASCII (punycode) form and lowercased.
func EmailDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", false
	}
	domain := strings.TrimSuffix(strings.TrimSpace(email[at+1:]), ".")
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil || ascii == "" {
		return "", false
	}
	return strings.ToLower(ascii), true
}

// ProviderAllowed reports whether the address belongs to an allow-listed provider.
func ProviderAllowed(email string) bool {
	domain, ok := EmailDomain(email)
	if !ok {
		return false
	}
	for _, p := range EmailProviders {
		if domain == p {
			return true
		}
	}
	return false
}

// ProviderError is shown under the email field when ProviderAllowed fails.
func ProviderError() string {
	return "Supported email providers are " + strings.Join(EmailProviders, ", ")
}
