package credentials

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"

	"github.com/jrsteele09/go-msauth/identity"
)

// NowTimeFunc returns the current time used in assertion claims. It can be
// overridden in tests.
var NowTimeFunc = time.Now

// assertionLifetime bounds how long a signed client assertion stays valid.
// Assertions are minted per request, so a short window is enough.
const assertionLifetime = 10 * time.Minute

// ClientCertificateCredential is the client_credentials grant authenticated
// by a certificate: each FormBody call signs a fresh JWT assertion with the
// certificate's private key in place of a client secret.
type ClientCertificateCredential struct {
	clientID      string
	certificate   *x509.Certificate
	key           crypto.PrivateKey
	scope         []string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	options       RequestOptions
}

// NewClientCertificateCredential builds a credential from certificate
// material already held in memory. RSA and ECDSA keys are supported.
func NewClientCertificateCredential(clientID string, certificate *x509.Certificate, key crypto.PrivateKey) *ClientCertificateCredential {
	return &ClientCertificateCredential{
		clientID:      strings.TrimSpace(clientID),
		certificate:   certificate,
		key:           key,
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
	}
}

// NewClientCertificateCredentialFromPFX builds a credential from PKCS#12
// (.pfx) bytes as exported from the certificate store or Key Vault.
func NewClientCertificateCredentialFromPFX(clientID string, pfxData []byte, password string) (*ClientCertificateCredential, error) {
	key, certificate, err := pkcs12.Decode(pfxData, password)
	if err != nil {
		return nil, fmt.Errorf("decode pkcs12 certificate: %w", err)
	}
	return NewClientCertificateCredential(clientID, certificate, key), nil
}

// WithScope replaces the scope list. Unset, DefaultM2MScope is sent.
func (c *ClientCertificateCredential) WithScope(scope ...string) *ClientCertificateCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *ClientCertificateCredential) WithTenant(tenantID string) *ClientCertificateCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *ClientCertificateCredential) WithAuthority(authority identity.Authority) *ClientCertificateCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *ClientCertificateCredential) WithCloudInstance(instance identity.AzureCloudInstance) *ClientCertificateCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *ClientCertificateCredential) WithRequestOptions(options RequestOptions) *ClientCertificateCredential {
	c.options = options
	return c
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *ClientCertificateCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody signs a fresh client assertion and encodes the token request
// body. The assertion's audience is the token endpoint itself, so changing
// authority or cloud after building invalidates nothing: the next call signs
// again.
func (c *ClientCertificateCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if c.certificate == nil {
		return "", identity.MissingRequiredValue("certificate")
	}
	if c.key == nil {
		return "", identity.MissingRequiredValue("certificate_key")
	}

	audience, err := c.TargetURI()
	if err != nil {
		return "", err
	}
	assertion, err := signClientAssertion(c.clientID, audience, c.certificate, c.key)
	if err != nil {
		return "", err
	}

	scope := c.scope
	if len(scope) == 0 {
		scope = []string{DefaultM2MScope}
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		ClientAssertionType(identity.ClientAssertionType).
		ClientAssertion(assertion).
		Scope(scope).
		GrantType(identity.GrantTypeClientCredentials)

	var body strings.Builder
	err = serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.ClientAssertionTypeParameter,
			identity.ClientAssertionParameter,
			identity.GrantTypeParameter,
			identity.ScopeParameter,
		},
		nil,
		&body,
	)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

// BasicAuth reports no Basic-Auth pair: certificate grants carry no shared
// secret.
func (c *ClientCertificateCredential) BasicAuth() (string, string, bool) {
	return "", "", false
}

// Options returns the transport extras configured for this credential.
func (c *ClientCertificateCredential) Options() RequestOptions {
	return c.options
}

func (c *ClientCertificateCredential) isCredential() {}

// signClientAssertion mints the confidential-client assertion JWT the
// platform expects: iss and sub are the client id, aud is the token endpoint,
// and the header carries the certificate's x5t thumbprint (SHA-1 per RFC
// 7515) so the platform can locate the registered certificate.
func signClientAssertion(clientID, audience string, certificate *x509.Certificate, key crypto.PrivateKey) (string, error) {
	method, err := signingMethodForKey(key)
	if err != nil {
		return "", err
	}

	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"aud": audience,
		"iss": clientID,
		"sub": clientID,
		"jti": uuid.New().String(),
		"iat": int64(now.Unix()),
		"nbf": int64(now.Unix()),
		"exp": int64(now.Add(assertionLifetime).Unix()),
	}

	token := jwtlib.NewWithClaims(method, claims)
	thumbprint := sha1.Sum(certificate.Raw)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(thumbprint[:])

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign client assertion: %w", err)
	}
	return signed, nil
}

func signingMethodForKey(key crypto.PrivateKey) (jwtlib.SigningMethod, error) {
	switch key.(type) {
	case *rsa.PrivateKey:
		return jwtlib.SigningMethodRS256, nil
	case *ecdsa.PrivateKey:
		return jwtlib.SigningMethodES256, nil
	default:
		return nil, identity.InvalidValue("certificate_key", "unsupported private key type")
	}
}
