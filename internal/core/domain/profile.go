package domain

// NormalizedProfile is the provider-agnostic shape derived from a raw OAuth
// provider response. Email and Image are nil when the provider does not
// expose them; EmailVerified is nil when the provider does not report a
// verification status at all.
type NormalizedProfile struct {
	// ID is the provider-assigned account identifier, always a string even
	// when the provider reports a numeric id.
	ID            string
	Name          string
	Email         *string
	Image         *string
	EmailVerified *bool
}
