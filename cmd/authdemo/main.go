// Command authdemo signs a user in through the browser-based authorization
// code flow and prints the claims of the tokens it receives. It exists to
// exercise the library end to end against a real application registration.
//
//	authdemo -client-id 6731de76-14a6-49ae-97bc-6eba6914391e -scopes "user.read"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-msauth/interactive"
	"github.com/jrsteele09/go-msauth/tokens"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("sign-in failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var (
		clientID  = flag.String("client-id", os.Getenv("MSAUTH_CLIENT_ID"), "application (client) id")
		secret    = flag.String("client-secret", os.Getenv("MSAUTH_CLIENT_SECRET"), "client secret, empty for public clients")
		tenant    = flag.String("tenant", "", "directory tenant id, defaults to the common audience")
		scopes    = flag.String("scopes", "user.read", "space separated scopes")
		port      = flag.Int("port", 0, "loopback callback port, 0 picks a free one")
		timeout   = flag.Duration("timeout", 5*time.Minute, "how long to wait for the sign-in")
		noBrowser = flag.Bool("no-browser", false, "print the sign-in URL instead of opening a browser")
		debugLog  = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debugLog {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	displayAppname("msauth")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow := interactive.NewFlow(*clientID).
		WithScope(strings.Fields(*scopes)...).
		WithOfflineAccess().
		WithCallbackPort(*port).
		WithTimeout(*timeout)
	if *tenant != "" {
		flow.WithTenant(*tenant)
	}
	if *noBrowser {
		flow.WithoutBrowser()
	}

	token, err := flow.Authenticate(ctx, *secret)
	if err != nil {
		return err
	}

	log.Info().
		Str("token_type", token.TokenType).
		Time("expiry", token.Expiry).
		Bool("refresh_token", token.RefreshToken != "").
		Msg("signed in")

	if claims, err := tokens.UnverifiedClaims(token.AccessToken); err != nil {
		log.Debug().Err(err).Msg("access token is opaque to this client")
	} else {
		log.Info().
			Str("tenant", tokens.TenantID(claims)).
			Str("object_id", tokens.ObjectID(claims)).
			Str("user", tokens.PreferredUsername(claims)).
			Strs("scopes", tokens.Scopes(claims)).
			Msg("access token claims")
	}

	if raw := tokens.IDToken(token); raw != "" {
		claims, err := tokens.UnverifiedClaims(raw)
		if err != nil {
			return fmt.Errorf("decode id token: %w", err)
		}
		log.Info().
			Str("user", tokens.PreferredUsername(claims)).
			Str("object_id", tokens.ObjectID(claims)).
			Msg("id token claims")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
