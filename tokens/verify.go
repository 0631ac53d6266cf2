package tokens

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-msauth/identity"
)

// DefaultDiscoveryTTL is how long a fetched discovery document is reused
// before the verifier refreshes it.
const DefaultDiscoveryTTL = 30 * time.Minute

// Verifier checks ID token signatures against the signing keys published
// through OpenID Connect discovery. The discovery document is cached for a
// TTL; concurrent fetches collapse into one.
type Verifier struct {
	clientID       string
	issuer         string
	sharedAudience bool
	client         *http.Client
	ttl            time.Duration

	group     singleflight.Group
	mu        sync.RWMutex
	provider  *oidc.Provider
	fetchedAt time.Time
}

// NewVerifier builds a verifier for ID tokens issued to clientID under the
// given authority. Tenanted authorities must use the tenant id, not a domain
// name, because the discovery document's issuer carries the id. Shared
// audiences (common, organizations, consumers) publish a templated issuer
// and sign tokens with the user's home tenant, so the issuer comparison is
// disabled for them; everything else, including the signature, is still
// checked.
func NewVerifier(clientID string, authority identity.Authority, instance identity.AzureCloudInstance) *Verifier {
	return &Verifier{
		clientID:       clientID,
		issuer:         instance.Issuer(authority),
		sharedAudience: authority.IsSharedAudience(),
		ttl:            DefaultDiscoveryTTL,
	}
}

// WithHTTPClient routes discovery and key fetches through client.
func (v *Verifier) WithHTTPClient(client *http.Client) *Verifier {
	v.client = client
	return v
}

// WithDiscoveryTTL overrides how long the discovery document is cached.
func (v *Verifier) WithDiscoveryTTL(ttl time.Duration) *Verifier {
	v.ttl = ttl
	return v
}

// Verify checks the signature, audience, and validity window of rawIDToken
// and returns the parsed token.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	provider, err := v.discoverProvider(ctx)
	if err != nil {
		return nil, err
	}

	idToken, err := provider.Verifier(&oidc.Config{
		ClientID:        v.clientID,
		SkipIssuerCheck: v.sharedAudience,
	}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return idToken, nil
}

// VerifyWithNonce additionally requires the token's nonce claim to match the
// nonce sent on the authorization request.
func (v *Verifier) VerifyWithNonce(ctx context.Context, rawIDToken, nonce string) (*oidc.IDToken, error) {
	idToken, err := v.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	if idToken.Nonce != nonce {
		return nil, identity.InvalidValue("nonce", "does not match the value sent on the authorization request")
	}
	return idToken, nil
}

func (v *Verifier) discoverProvider(ctx context.Context) (*oidc.Provider, error) {
	v.mu.RLock()
	provider, fresh := v.provider, time.Since(v.fetchedAt) < v.ttl
	v.mu.RUnlock()
	if provider != nil && fresh {
		return provider, nil
	}

	result, err, _ := v.group.Do(v.issuer, func() (any, error) {
		v.mu.RLock()
		cached, fresh := v.provider, time.Since(v.fetchedAt) < v.ttl
		v.mu.RUnlock()
		if cached != nil && fresh {
			return cached, nil
		}

		discoveryCtx := ctx
		if v.client != nil {
			discoveryCtx = oidc.ClientContext(discoveryCtx, v.client)
		}
		if v.sharedAudience {
			// The shared discovery documents advertise the {tenantid}
			// issuer template, which never equals the URL they were
			// fetched from.
			discoveryCtx = oidc.InsecureIssuerURLContext(discoveryCtx, v.issuer)
		}

		p, err := oidc.NewProvider(discoveryCtx, v.issuer)
		if err != nil {
			return nil, fmt.Errorf("discover openid configuration: %w", err)
		}

		v.mu.Lock()
		v.provider = p
		v.fetchedAt = time.Now()
		v.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*oidc.Provider), nil
}
