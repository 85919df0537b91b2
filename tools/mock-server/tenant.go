package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	tokenPath        = "/oauth2/v0/token"
	usersPath        = "/profile/identity/v4.1/Users"
	scimListSchema   = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	defaultUserCount = 100
	maxUserCount     = 1000
	defaultPageSize  = 200
)

type record = map[string]any

// tenant is the fixture served by the mock.
type tenant struct {
	Users        []record            `json:"users"`
	Transactions map[string][]record `json:"transactions"`
	Reports      map[string][]record `json:"reports"`
}

func loadFixture(path string) (*tenant, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var t tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &t, nil
}

func (t *tenant) user(id string) (record, bool) {
	for _, u := range t.Users {
		if u["id"] == id {
			return u, true
		}
	}
	return nil, false
}

// session tracks the one OAuth client the mock accepts.
type session struct {
	mu           sync.Mutex
	clientID     string
	clientSecret string
	refreshToken string
	rotate       bool
	ttl          time.Duration
	issued       int
	accessTokens map[string]time.Time
	now          func() time.Time
}

func newSession(clientID, clientSecret, refreshToken string, rotate bool, ttl time.Duration) *session {
	return &session{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		rotate:       rotate,
		ttl:          ttl,
		accessTokens: map[string]time.Time{},
		now:          time.Now,
	}
}

func (s *session) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.accessTokens[token]
	return ok && s.now().Before(exp)
}

func newMux(logger *slog.Logger, t *tenant, s *session, rejectAttrs []string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+tokenPath, tokenHandler(logger, s))
	mux.Handle("GET "+usersPath, authorize(s, usersHandler(logger, t, rejectAttrs)))
	mux.Handle("GET "+usersPath+"/{id}", authorize(s, userHandler(t, rejectAttrs)))
	mux.Handle("GET /cards/v4/users/{id}/transactions", authorize(s, transactionsHandler(logger, t)))
	mux.Handle("GET /expensereports/v4/users/{id}/reports", authorize(s, reportsHandler(t)))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func oauthError(w http.ResponseWriter, status int, code, desc string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": desc})
}

// tokenHandler implements the refresh_token grant. Client credentials are
// accepted in the form or as Basic auth.
func tokenHandler(logger *slog.Logger, s *session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			oauthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
			return
		}

		id, secret := r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
		if u, p, ok := r.BasicAuth(); ok {
			id, _ = url.QueryUnescape(u)
			secret, _ = url.QueryUnescape(p)
		}

		if gt := r.PostForm.Get("grant_type"); gt != "refresh_token" {
			oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "grant_type must be refresh_token")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if id != s.clientID || secret != s.clientSecret {
			logger.Warn("token request with unknown client", "client_id", id)
			oauthError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
			return
		}
		if r.PostForm.Get("refresh_token") != s.refreshToken {
			logger.Warn("token request with stale refresh token")
			oauthError(w, http.StatusBadRequest, "invalid_grant", "refresh token is invalid or expired")
			return
		}

		s.issued++
		access := fmt.Sprintf("mock-access-%d", s.issued)
		s.accessTokens[access] = s.now().Add(s.ttl)
		if s.rotate {
			s.refreshToken = fmt.Sprintf("mock-refresh-%d", s.issued)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  access,
			"refresh_token": s.refreshToken,
			"expires_in":    int(s.ttl.Seconds()),
			"token_type":    "Bearer",
			"scope":         "identity.user.core.read cards.transactions.read expense.report.read",
			"geolocation":   "http://" + r.Host,
		})
		logger.Info("issued mock token", "exchange", s.issued, "rotated", s.rotate)
	}
}

func authorize(s *session, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !s.valid(token) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":  "invalid_token",
				"detail": "The access token is missing, invalid or expired.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rejected returns the first requested attribute the tenant does not
// recognize.
func rejected(r *http.Request, rejectAttrs []string) (string, bool) {
	for _, a := range splitList(r.URL.Query().Get("attributes")) {
		if slices.Contains(rejectAttrs, a) {
			return a, true
		}
	}
	return "", false
}

func rejectAttribute(w http.ResponseWriter, attr string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"schemas": []string{"urn:ietf:params:scim:api:messages:2.0:Error"},
		"status":  "400",
		"detail":  "Unrecognized attributes: " + attr,
	})
}

func intParam(q url.Values, key string, def int) int {
	if v, err := strconv.Atoi(q.Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// usersHandler serves SCIM cursor pages (startIndex is 1-based).
func usersHandler(logger *slog.Logger, t *tenant, rejectAttrs []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if attr, bad := rejected(r, rejectAttrs); bad {
			rejectAttribute(w, attr)
			return
		}

		q := r.URL.Query()
		start := intParam(q, "startIndex", 1)
		count := min(intParam(q, "count", defaultUserCount), maxUserCount)

		page := []record{}
		if start <= len(t.Users) {
			end := min(start-1+count, len(t.Users))
			page = t.Users[start-1 : end]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"schemas":      []string{scimListSchema},
			"totalResults": len(t.Users),
			"itemsPerPage": len(page),
			"startIndex":   start,
			"Resources":    page,
		})
		logger.Info("users", "start", start, "count", count, "returned", len(page))
	}
}

func userHandler(t *tenant, rejectAttrs []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if attr, bad := rejected(r, rejectAttrs); bad {
			rejectAttribute(w, attr)
			return
		}
		u, ok := t.user(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "404", "detail": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// offsetPage slices items for a 1-based page of size pageSize.
func offsetPage(items []record, q url.Values) []record {
	page := intParam(q, "page", 1)
	size := intParam(q, "pageSize", defaultPageSize)
	start := (page - 1) * size
	if start >= len(items) {
		return []record{}
	}
	return items[start:min(start+size, len(items))]
}

func transactionsHandler(logger *slog.Logger, t *tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, to := q.Get("transactionDateFrom"), q.Get("transactionDateTo")
		if from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"detail": "transactionDateFrom and transactionDateTo are required",
			})
			return
		}

		var matched []record
		for _, tx := range t.Transactions[r.PathValue("id")] {
			d, _ := tx["transactionDate"].(string)
			if d >= from && d <= to {
				matched = append(matched, tx)
			}
		}

		page := offsetPage(matched, q)
		writeJSON(w, http.StatusOK, map[string]any{"transactions": page})
		logger.Info("transactions", "user", r.PathValue("id"), "matched", len(matched), "returned", len(page))
	}
}

func reportsHandler(t *tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := offsetPage(t.Reports[r.PathValue("id")], r.URL.Query())
		writeJSON(w, http.StatusOK, map[string]any{"Items": page})
	}
}
