package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
)

type fakeAuthenticator struct {
	sessions map[string]*requestdata.RequestData
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, tokenString string) (*requestdata.RequestData, error) {
	rd, ok := f.sessions[tokenString]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return rd, nil
}

func guardFixture(t *testing.T) (*AuthMiddleware, *fakeAuthenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	auth := &fakeAuthenticator{sessions: map[string]*requestdata.RequestData{}}
	return NewAuthMiddleware(log, auth), auth
}

func serve(guard gin.HandlerFunc, authorization string) (*httptest.ResponseRecorder, *requestdata.RequestData) {
	var seen *requestdata.RequestData
	router := gin.New()
	router.GET("/probe", guard, func(c *gin.Context) {
		seen = requestdata.GetRequestData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, seen
}

func TestGuard_MissingTokenIsUnauthorized(t *testing.T) {
	mw, _ := guardFixture(t)
	rec, _ := serve(mw.RequireAuth(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_MalformedHeaderIsUnauthorized(t *testing.T) {
	mw, _ := guardFixture(t)
	rec, _ := serve(mw.RequireAuth(), "Basic abc123")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_UnknownTokenIsUnauthorized(t *testing.T) {
	mw, _ := guardFixture(t)
	rec, _ := serve(mw.RequireAuth(), "Bearer nope")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_ValidSessionReachesHandlerWithIdentity(t *testing.T) {
	mw, auth := guardFixture(t)
	userID := uuid.New()
	auth.sessions["good"] = &requestdata.RequestData{TokenString: "good", UserID: userID}

	rec, seen := serve(mw.RequireAuth(), "Bearer good")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != userID {
		t.Fatalf("expected the resolved identity on the request context")
	}
}

func TestGuard_AdminPredicateForbidsBasicSession(t *testing.T) {
	mw, auth := guardFixture(t)
	auth.sessions["basic"] = &requestdata.RequestData{TokenString: "basic", UserID: uuid.New()}

	rec, _ := serve(mw.RequireAdmin(), "Bearer basic")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin session, got %d", rec.Code)
	}
}

func TestGuard_AdminPredicateAdmitsElevatedSession(t *testing.T) {
	mw, auth := guardFixture(t)
	auth.sessions["elevated"] = &requestdata.RequestData{TokenString: "elevated", UserID: uuid.New(), IsAdmin: true}

	rec, seen := serve(mw.RequireAdmin(), "Bearer elevated")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || !seen.IsAdmin {
		t.Fatalf("expected the elevated identity on the request context")
	}
}
