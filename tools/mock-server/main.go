// Package main implements a mock SAP Concur tenant for local development.
// It serves the OAuth2 refresh-token grant, Identity v4.1 users, Cards v4
// transactions and Expense v4 reports from a JSON fixture, without real
// Concur credentials.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/tenant.json", "path to tenant fixture")
	clientID := flag.String("client-id", "mock-client", "accepted OAuth client ID")
	clientSecret := flag.String("client-secret", "mock-secret", "accepted OAuth client secret")
	refreshToken := flag.String("refresh-token", "mock-refresh-0", "initial refresh token")
	rotate := flag.Bool("rotate", true, "issue a new refresh token on every exchange")
	tokenTTL := flag.Duration("token-ttl", 30*time.Minute, "access token lifetime")
	reject := flag.String("reject-attributes", "", "comma-separated user attributes answered with a 400")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "users", len(fixture.Users))

	sess := newSession(*clientID, *clientSecret, *refreshToken, *rotate, *tokenTTL)
	mux := newMux(logger, fixture, sess, splitList(*reject))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock concur server", "addr", addr,
		"token_url", fmt.Sprintf("http://localhost:%d%s", *port, tokenPath))

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
