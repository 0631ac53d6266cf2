// Package tokens turns raw token-endpoint responses into usable tokens:
// deserialization into oauth2.Token, claim extraction, OpenID Connect
// signature verification, and an oauth2.TokenSource adapter over any
// credential.
package tokens

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-msauth/identity"
)

// maxResponseBytes caps how much of a token response is read. Real responses
// are a few kilobytes; the cap guards against a misbehaving endpoint.
const maxResponseBytes = 1 << 20

// tokenJSON mirrors the token endpoint's success payload.
type tokenJSON struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

// errorJSON mirrors the token endpoint's error payload.
type errorJSON struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Error is a decoded token endpoint failure. Code holds the platform's error
// string when the body was the standard error payload, and is empty
// otherwise. It unwraps to identity.ErrUpstreamHTTP.
type Error struct {
	StatusCode  int
	Code        string
	Description string
	Body        string
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("token endpoint returned status %d: %s: %s", e.StatusCode, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Body)
	}
}

func (e *Error) Unwrap() error { return identity.ErrUpstreamHTTP }

func responseError(statusCode int, payload []byte) *Error {
	respErr := &Error{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(payload)),
	}
	var apiErr errorJSON
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		respErr.Code = apiErr.Error
		respErr.Description = apiErr.ErrorDescription
	}
	return respErr
}

// ParseTokenResponse deserializes a token endpoint response into an
// oauth2.Token. The response body is consumed and closed. Error statuses are
// decoded into the platform's error/error_description pair when present; the
// raw body is reported otherwise. The returned token's Extra carries every
// response field, so Extra("id_token") yields the ID token for verification.
func ParseTokenResponse(resp *http.Response) (*oauth2.Token, error) {
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading token response: %v", identity.ErrUpstreamHTTP, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, responseError(resp.StatusCode, payload)
	}

	var extra map[string]any
	if err := json.Unmarshal(payload, &extra); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", identity.ErrUpstreamHTTP, err)
	}
	var tj tokenJSON
	if err := json.Unmarshal(payload, &tj); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", identity.ErrUpstreamHTTP, err)
	}
	if tj.AccessToken == "" && tj.IDToken == "" {
		return nil, fmt.Errorf("%w: token response carries no token", identity.ErrUpstreamHTTP)
	}

	token := &oauth2.Token{
		AccessToken:  tj.AccessToken,
		TokenType:    tj.TokenType,
		RefreshToken: tj.RefreshToken,
	}
	if tj.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tj.ExpiresIn) * time.Second)
	}
	return token.WithExtra(extra), nil
}

// IDToken returns the OpenID Connect ID token delivered alongside token, or
// an empty string when the response carried none.
func IDToken(token *oauth2.Token) string {
	raw, _ := token.Extra("id_token").(string)
	return raw
}

// ParseDeviceAuthResponse deserializes the /devicecode endpoint's response:
// the device code to poll with and the user code to display.
func ParseDeviceAuthResponse(resp *http.Response) (*oauth2.DeviceAuthResponse, error) {
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading device authorization response: %v", identity.ErrUpstreamHTTP, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, responseError(resp.StatusCode, payload)
	}

	var auth oauth2.DeviceAuthResponse
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, fmt.Errorf("%w: decoding device authorization response: %v", identity.ErrUpstreamHTTP, err)
	}
	if auth.DeviceCode == "" {
		return nil, fmt.Errorf("%w: device authorization response carries no device code", identity.ErrUpstreamHTTP)
	}
	return &auth, nil
}
