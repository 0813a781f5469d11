package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/jrsteele09/studygroup-client/internal/logging"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend"
	"github.com/rs/zerolog/log"
)

type seedUsers []string

func (s *seedUsers) String() string { return fmt.Sprint(*s) }

func (s *seedUsers) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var seeds seedUsers
	flag.Var(&seeds, "user", "seed a user as username:email:password (repeatable)")
	rotate := flag.Bool("rotate-refresh", false, "issue a new refresh token on every refresh")
	flag.Parse()

	if err := run(seeds, *rotate); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(seeds seedUsers, rotate bool) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName() + " stub")

	var options []stubbackend.ServerOption
	if rotate {
		options = append(options, stubbackend.WithRotatingRefreshTokens())
	}
	backend := stubbackend.New(c, options...)
	for _, seed := range seeds {
		if err := seedUser(backend, seed); err != nil {
			return err
		}
	}

	server := &http.Server{Addr: c.GetPort(), Handler: backend, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(server)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func seedUser(backend *stubbackend.Server, seed string) error {
	parts := strings.SplitN(seed, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return fmt.Errorf("invalid -user %q, want username:email:password", seed)
	}
	_, fields, err := backend.CreateUser(parts[0], parts[1], parts[2])
	if err != nil {
		return err
	}
	if fields != nil {
		return fmt.Errorf("seed user %s: %v", parts[0], fields)
	}
	log.Info().Str("username", parts[0]).Msg("Seeded user")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
