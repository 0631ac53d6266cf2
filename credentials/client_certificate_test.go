package credentials_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"net/url"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
)

func TestClientCertificateCredentialFormBody(t *testing.T) {
	certificate, key := newTestCertificate(t)
	cred := credentials.NewClientCertificateCredential(testClientID, certificate, key).
		WithTenant("contoso.onmicrosoft.com")

	body, err := cred.FormBody()
	require.NoError(t, err)

	values, err := url.ParseQuery(body)
	require.NoError(t, err)
	require.Equal(t, testClientID, values.Get("client_id"))
	require.Equal(t, "urn:ietf:params:oauth:client-assertion-type:jwt-bearer", values.Get("client_assertion_type"))
	require.Equal(t, "client_credentials", values.Get("grant_type"))
	require.Equal(t, "https://graph.microsoft.com/.default", values.Get("scope"))

	t.Run("assertion verifies against the certificate key", func(t *testing.T) {
		token, err := jwtlib.Parse(values.Get("client_assertion"), func(*jwtlib.Token) (any, error) {
			return &key.PublicKey, nil
		}, jwtlib.WithValidMethods([]string{"RS256"}))
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims, ok := token.Claims.(jwtlib.MapClaims)
		require.True(t, ok)
		require.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", claims["aud"])
		require.Equal(t, testClientID, claims["iss"])
		require.Equal(t, testClientID, claims["sub"])

		jti, err := uuid.Parse(claims["jti"].(string))
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, jti)

		thumbprint := sha1.Sum(certificate.Raw)
		require.Equal(t, base64.RawURLEncoding.EncodeToString(thumbprint[:]), token.Header["x5t"])
	})
}

func TestClientCertificateCredentialAssertionLifetime(t *testing.T) {
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	credentials.NowTimeFunc = func() time.Time { return frozen }
	defer func() { credentials.NowTimeFunc = time.Now }()

	certificate, key := newTestCertificate(t)
	body, err := credentials.NewClientCertificateCredential(testClientID, certificate, key).FormBody()
	require.NoError(t, err)

	values, err := url.ParseQuery(body)
	require.NoError(t, err)

	token, _, err := jwtlib.NewParser().ParseUnverified(values.Get("client_assertion"), jwtlib.MapClaims{})
	require.NoError(t, err)

	claims := token.Claims.(jwtlib.MapClaims)
	require.Equal(t, float64(frozen.Unix()), claims["iat"])
	require.Equal(t, float64(frozen.Unix()), claims["nbf"])
	require.Equal(t, float64(frozen.Add(10*time.Minute).Unix()), claims["exp"])
}

func TestClientCertificateCredentialKeyTypes(t *testing.T) {
	t.Run("ecdsa keys sign with ES256", func(t *testing.T) {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		certificate := selfSignedCertificate(t, &key.PublicKey, key)

		body, err := credentials.NewClientCertificateCredential(testClientID, certificate, key).FormBody()
		require.NoError(t, err)

		values, err := url.ParseQuery(body)
		require.NoError(t, err)
		token, _, err := jwtlib.NewParser().ParseUnverified(values.Get("client_assertion"), jwtlib.MapClaims{})
		require.NoError(t, err)
		require.Equal(t, "ES256", token.Header["alg"])
	})

	t.Run("unsupported key type is rejected", func(t *testing.T) {
		public, private, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		certificate := selfSignedCertificate(t, public, private)

		_, err = credentials.NewClientCertificateCredential(testClientID, certificate, private).FormBody()
		require.ErrorIs(t, err, identity.ErrInvalidValue)
		require.Contains(t, err.Error(), "certificate_key")
	})
}

func TestClientCertificateCredentialValidation(t *testing.T) {
	certificate, key := newTestCertificate(t)

	t.Run("missing certificate", func(t *testing.T) {
		_, err := credentials.NewClientCertificateCredential(testClientID, nil, key).FormBody()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "certificate")
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := credentials.NewClientCertificateCredential(testClientID, certificate, nil).FormBody()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "certificate_key")
	})

	t.Run("no basic auth pair", func(t *testing.T) {
		_, _, ok := credentials.NewClientCertificateCredential(testClientID, certificate, key).BasicAuth()
		require.False(t, ok)
	})
}

func TestNewClientCertificateCredentialFromPFX(t *testing.T) {
	_, err := credentials.NewClientCertificateCredentialFromPFX(testClientID, []byte("not a pfx"), "password")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode pkcs12")
}

func newTestCertificate(t *testing.T) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return selfSignedCertificate(t, &key.PublicKey, key), key
}

func selfSignedCertificate(t *testing.T, public any, private crypto.PrivateKey) *x509.Certificate {
	t.Helper()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "msauth-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, public, private)
	require.NoError(t, err)

	certificate, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return certificate
}
