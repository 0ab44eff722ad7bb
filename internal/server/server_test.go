package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/config"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
	mongodoc "github.com/campuseats/dining-reviews/api/internal/infrastructure/mongo"
	"github.com/campuseats/dining-reviews/api/internal/ingest"
	adminhttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/admin"
	commonhttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
	publichttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/public"
	"github.com/campuseats/dining-reviews/api/internal/observability/metrics"
)

var testSecret = []byte("test-secret")

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context, *readpref.ReadPref) error { return f.err }

type fakePings struct {
	doc *mongodoc.PingDocument
	err error
}

func (f *fakePings) Latest(context.Context) (*mongodoc.PingDocument, error) { return f.doc, f.err }

func (f *fakePings) EnsureSample(context.Context, time.Time) error { return nil }

type nopStore struct{}

func (nopStore) InsertOne(context.Context, *domain.Review) error    { return nil }
func (nopStore) InsertMany(context.Context, []*domain.Review) error { return nil }

func newTestServer(t *testing.T, health error, pings *fakePings) *Server {
	t.Helper()
	m, err := metrics.New()
	require.NoError(t, err)
	logger := zap.NewNop().Sugar()
	return &Server{
		logger:         logger,
		health:         fakeHealth{err: health},
		pings:          pings,
		writer:         ingest.New(ingest.Config{Store: nopStore{}}),
		metrics:        m,
		public:         publichttp.NewHandler(publichttp.Config{Logger: logger}),
		admin:          adminhttp.NewHandler(adminhttp.Config{Logger: logger}),
		jwt:            config.JWTConfig{Issuer: "dining-auth", Secret: testSecret},
		jwtAudience:    "dining-api",
		allowedOrigins: []string{"https://menu.example"},
	}
}

func signToken(t *testing.T, secret []byte, claims authClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func validClaims() authClaims {
	return authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "dining-auth",
			Audience:  jwt.ClaimStrings{"dining-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: "Robin",
	}
}

func decodeEnvelope(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestUnknownRouteAndMethodUseEnvelope(t *testing.T) {
	router := newTestServer(t, nil, &fakePings{}).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec.Body)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 404, body["status"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body = decodeEnvelope(t, rec.Body)
	assert.EqualValues(t, 405, body["status"])
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, nil, &fakePings{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeEnvelope(t, rec.Body)["status"])

	rec = httptest.NewRecorder()
	newTestServer(t, errors.New("no reachable servers"), &fakePings{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "reachable servers")
}

func TestPing(t *testing.T) {
	doc := &mongodoc.PingDocument{ID: primitive.NewObjectID(), Message: "pong", CreatedAt: time.Now()}
	rec := httptest.NewRecorder()
	newTestServer(t, nil, &fakePings{doc: doc}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"pong"`)

	rec = httptest.NewRecorder()
	newTestServer(t, nil, &fakePings{err: domain.ErrNotFound}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, &fakePings{})
	srv.metrics.ObserveCache("hit")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dining_food_item_cache_requests_total{result="hit"} 1`)
}

func TestAdminRequiresToken(t *testing.T) {
	router := newTestServer(t, nil, &fakePings{}).Router()

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage token":  "Bearer abc.def.ghi",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/admin/reviews", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	// authenticated, but bulk clear is disabled outside development
	req := httptest.NewRequest(http.MethodDelete, "/admin/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestParseAuthToken(t *testing.T) {
	srv := newTestServer(t, nil, &fakePings{})

	claims, err := srv.parseAuthToken(signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Robin", claims.Name)

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"
	_, err = srv.parseAuthToken(signToken(t, testSecret, wrongIssuer))
	assert.ErrorIs(t, err, errInvalidToken)

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other-api"}
	_, err = srv.parseAuthToken(signToken(t, testSecret, wrongAudience))
	assert.ErrorIs(t, err, errInvalidToken)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err = srv.parseAuthToken(signToken(t, testSecret, expired))
	assert.ErrorIs(t, err, errInvalidToken)

	noSubject := validClaims()
	noSubject.Subject = ""
	_, err = srv.parseAuthToken(signToken(t, testSecret, noSubject))
	assert.ErrorIs(t, err, errInvalidToken)

	_, err = srv.parseAuthToken(signToken(t, []byte("other-secret"), validClaims()))
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	srv := newTestServer(t, nil, &fakePings{})

	var seen []string
	handler := srv.optionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := commonhttp.UserFromContext(r.Context())
		if ok {
			seen = append(seen, user.DisplayName())
		} else {
			seen = append(seen, "")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, header := range []string{"", "Bearer nonsense", "Bearer " + signToken(t, testSecret, validClaims())} {
		req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader("{}"))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, []string{"", "", "Robin"}, seen)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, nil, &fakePings{}).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set("Origin", "https://menu.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://menu.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestShutdownDrainsBuffer(t *testing.T) {
	srv := newTestServer(t, nil, &fakePings{})
	srv.writer.Start()
	srv.shutdown()
	assert.ErrorIs(t, srv.writer.Write(context.Background(), &domain.Review{}), ingest.ErrClosed)
}
