package httpdefaults

import (
	"crypto/tls"
	"net/http"
	"time"
)

// TransportConfig supplies the transport constraints token requests run
// under. The identity platform rejects TLS below 1.2, so the floor is part of
// the contract rather than a tuning knob.
type TransportConfig interface {
	GetRequestTimeout() time.Duration
	GetMinTLSVersion() uint16
}

type Transport struct{}

var _ TransportConfig = Transport{}

func (Transport) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}

func (Transport) GetMinTLSVersion() uint16 {
	return tls.VersionTLS12
}

// Client builds the http.Client used whenever a caller does not supply one.
func Client(cfg TransportConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.GetRequestTimeout(),
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{MinVersion: cfg.GetMinTLSVersion()},
		},
	}
}
