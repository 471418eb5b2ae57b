package testutil

// DefaultSessionToken is used when a scenario does not pin a token.
const DefaultSessionToken = "test-session-default"

// FixedTokenGenerator returns the same session token every time.
//
// The same scenario with the same generator produces byte-identical
// journals and snapshots.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator for token.
// If token is empty, Generate() returns DefaultSessionToken.
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = DefaultSessionToken
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
