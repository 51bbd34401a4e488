package google

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the persisted form of a Google OAuth token together with the
// scopes it was granted for. It is stored as a single JSON file per account
// and rewritten atomically on every mutation.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`

	// Scopes records what the user actually consented to.
	Scopes []string `json:"scopes,omitempty"`

	// RequestedScopes records scopes a caller needed but the credential
	// lacks. The next consent URL requests the union of Scopes and
	// RequestedScopes so re-consent does not lose existing grants.
	RequestedScopes []string `json:"requested_scopes,omitempty"`

	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Token converts the credential to an oauth2.Token for use with token sources.
func (c *Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    tokenType,
		Expiry:       c.Expiry,
	}
}

// HasScopes reports whether every scope in required was granted.
func (c *Credential) HasScopes(required []string) bool {
	return len(c.MissingScopes(required)) == 0
}

// MissingScopes returns the subset of required that the credential lacks.
// Broad scopes count as covering the narrower scopes they imply.
func (c *Credential) MissingScopes(required []string) []string {
	expanded := expandScopes(c.Scopes)
	granted := make(map[string]bool, len(expanded))
	for _, s := range expanded {
		granted[s] = true
	}
	var missing []string
	for _, s := range required {
		if !granted[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// credentialFromToken builds a Credential from a freshly exchanged or
// refreshed token. An empty refresh token falls back to the previous one so
// a refresh response that omits it does not lose the grant.
func credentialFromToken(tok *oauth2.Token, scopes []string, prev *Credential) *Credential {
	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}
	if prev != nil {
		if cred.RefreshToken == "" {
			cred.RefreshToken = prev.RefreshToken
		}
		if len(cred.Scopes) == 0 {
			cred.Scopes = prev.Scopes
		}
		cred.RequestedScopes = prev.RequestedScopes
		cred.ClientID = prev.ClientID
		cred.ClientSecret = prev.ClientSecret
	}
	return cred
}

// unionScopes merges two scope lists preserving order of first occurrence.
func unionScopes(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
