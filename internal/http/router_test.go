package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"lead-management-server/internal/auth"
	"lead-management-server/internal/config"
	transport "lead-management-server/internal/http"
	"lead-management-server/internal/http/middleware"
	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
	"lead-management-server/internal/repo"
	"lead-management-server/internal/services"
)

type fixture struct {
	router *gin.Engine
	users  *userStoreStub
	leads  *leadStoreStub
	tokens *auth.TokenManager
}

func newFixture(t *testing.T, jwtExpiry time.Duration) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret",
		JWTExpiry:          jwtExpiry,
		Cookie:             config.CookieOptions{Name: "token", MaxAge: time.Hour},
		RateLimitPerMinute: 1000,
		PasswordMinLen:     6,
	}

	users := newUserStoreStub()
	leads := newLeadStoreStub()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	router := transport.NewRouter(transport.Dependencies{
		Config:      cfg,
		Users:       users,
		Tokens:      tokens,
		AuthService: services.NewAuthService(users, tokens, cfg),
		LeadService: services.NewLeadService(leads),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitPerMinute),
	})

	return &fixture{router: router, users: users, leads: leads, tokens: tokens}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) registeredUser(t *testing.T) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user, err := f.users.Create(context.Background(), &models.User{
		FirstName:    "jane",
		LastName:     "doe",
		Email:        "jane@example.com",
		PasswordHash: string(hash),
	})
	require.NoError(t, err)

	token, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

func TestAuthGateRejections(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		rec := f.do(http.MethodGet, "/api/v1/leads", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t, -time.Minute)
		_, token := f.registeredUser(t)
		rec := f.do(http.MethodGet, "/api/v1/leads", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("token for deleted user", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		user, token := f.registeredUser(t)
		require.NoError(t, f.users.Delete(context.Background(), user.ID))

		rec := f.do(http.MethodGet, "/api/v1/leads", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "user not found")
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newFixture(t, time.Hour)
		rec := f.do(http.MethodGet, "/api/v1/leads", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRegisterLoginFlow(t *testing.T) {
	f := newFixture(t, time.Hour)

	rec := f.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@example.com",
		"password":   "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		User    models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.True(t, registered.Success)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = f.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")

	rec = f.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLeadEndpoints(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, token := f.registeredUser(t)

	rec := f.do(http.MethodPost, "/api/v1/leads", token, map[string]any{
		"first_name": "Ravi",
		"last_name":  "Sharma",
		"email":      "ravi@example.com",
		"source":     "website",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data models.Lead `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "new", created.Data.Status)

	t.Run("duplicate create", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/leads", token, map[string]any{
			"first_name": "Ravi",
			"last_name":  "Sharma",
			"email":      "ravi@example.com",
			"source":     "website",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/leads/"+created.Data.ID, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(http.MethodGet, "/api/v1/leads/missing", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update stamps last activity on status change", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/api/v1/leads/"+created.Data.ID, token, map[string]any{
			"status": "contacted",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated struct {
			Data models.Lead `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "contacted", updated.Data.Status)
		assert.NotNil(t, updated.Data.LastActivityAt)
	})

	t.Run("delete", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/api/v1/leads/"+created.Data.ID, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(http.MethodDelete, "/api/v1/leads/"+created.Data.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLeadListPaginationEnvelope(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, token := f.registeredUser(t)

	for i := 0; i < 25; i++ {
		rec := f.do(http.MethodPost, "/api/v1/leads", token, map[string]any{
			"first_name": "Ravi",
			"last_name":  "Sharma",
			"email":      fmt.Sprintf("lead%02d@example.com", i),
			"source":     "website",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := f.do(http.MethodGet, "/api/v1/leads?page=3&limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Data       []models.Lead `json:"data"`
		Page       int           `json:"page"`
		Limit      int           `json:"limit"`
		Total      int64         `json:"total"`
		TotalPages int           `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Data, 5)
	assert.Equal(t, 3, listing.Page)
	assert.Equal(t, 10, listing.Limit)
	assert.Equal(t, int64(25), listing.Total)
	assert.Equal(t, 3, listing.TotalPages)
}

func TestLeadListValidationErrorSurfacesUnchanged(t *testing.T) {
	f := newFixture(t, time.Hour)
	_, token := f.registeredUser(t)

	rec := f.do(http.MethodGet, "/api/v1/leads?status_in=not-json", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "status_in")
}

func TestUnmatchedRoute(t *testing.T) {
	f := newFixture(t, time.Hour)
	rec := f.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "route not found")
}

// userStoreStub and leadStoreStub are map-backed stores; leadStoreStub.List
// honors creation-order sorting and pagination, which is what these tests
// exercise.

type userStoreStub struct {
	seq   int
	users map[string]*models.User
}

var _ repo.UserStore = (*userStoreStub)(nil)

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]*models.User)}
}

func (s *userStoreStub) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, repo.ErrDuplicate
		}
	}
	s.seq++
	user.ID = fmt.Sprintf("user-%d", s.seq)
	stored := *user
	s.users[user.ID] = &stored
	clone := stored
	return &clone, nil
}

func (s *userStoreStub) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *userStoreStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *userStoreStub) UpdateProfile(_ context.Context, user *models.User) (*models.User, error) {
	stored, ok := s.users[user.ID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	clone := *stored
	return &clone, nil
}

func (s *userStoreStub) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if stored, ok := s.users[id]; ok {
		stored.LastLogin = &at
	}
	return nil
}

func (s *userStoreStub) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	stored.ForgotPasswordToken = nil
	stored.ForgotPasswordExpiry = nil
	return nil
}

func (s *userStoreStub) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	stored, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.ForgotPasswordToken = &tokenHash
	stored.ForgotPasswordExpiry = &expiresAt
	return nil
}

func (s *userStoreStub) GetByResetTokenHash(_ context.Context, tokenHash string) (*models.User, error) {
	for _, user := range s.users {
		if user.ForgotPasswordToken != nil && *user.ForgotPasswordToken == tokenHash &&
			user.ForgotPasswordExpiry != nil && user.ForgotPasswordExpiry.After(time.Now()) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *userStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type leadStoreStub struct {
	seq   int
	leads map[string]*models.Lead
}

var _ repo.LeadStore = (*leadStoreStub)(nil)

func newLeadStoreStub() *leadStoreStub {
	return &leadStoreStub{leads: make(map[string]*models.Lead)}
}

func (s *leadStoreStub) Create(_ context.Context, lead *models.Lead) (*models.Lead, error) {
	for _, existing := range s.leads {
		if existing.Email == lead.Email {
			return nil, repo.ErrDuplicate
		}
	}
	s.seq++
	lead.ID = fmt.Sprintf("lead-%d", s.seq)
	lead.CreatedAt = time.Now().Add(time.Duration(s.seq) * time.Millisecond)
	stored := *lead
	s.leads[lead.ID] = &stored
	clone := stored
	return &clone, nil
}

func (s *leadStoreStub) GetByID(_ context.Context, id string) (*models.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	clone := *lead
	return &clone, nil
}

func (s *leadStoreStub) GetByEmail(_ context.Context, email string) (*models.Lead, error) {
	for _, lead := range s.leads {
		if lead.Email == email {
			clone := *lead
			return &clone, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *leadStoreStub) Update(_ context.Context, lead *models.Lead) (*models.Lead, error) {
	if _, ok := s.leads[lead.ID]; !ok {
		return nil, repo.ErrNotFound
	}
	stored := *lead
	s.leads[lead.ID] = &stored
	clone := stored
	return &clone, nil
}

func (s *leadStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.leads[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *leadStoreStub) List(_ context.Context, query *leadfilter.Query) ([]models.Lead, int64, error) {
	all := make([]models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		all = append(all, *lead)
	}
	sort.Slice(all, func(i, j int) bool {
		if query.SortOrder == "desc" {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := query.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + query.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
