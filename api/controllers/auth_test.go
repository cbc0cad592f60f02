package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "github.com/cajaregistradora/pos-backend/internal/auth"
	"github.com/cajaregistradora/pos-backend/internal/users"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

type stubAuthService struct {
	registered *authsvc.RegisterRequest
	loginReq   *authsvc.LoginRequest
	loginErr   error
	refreshReq *authsvc.RefreshRequest
	loggedOut  string
}

func (s *stubAuthService) Register(_ context.Context, req authsvc.RegisterRequest) (*users.UserDTO, error) {
	s.registered = &req
	return &users.UserDTO{Email: strings.ToLower(req.Email), FullName: req.FullName}, nil
}

func (s *stubAuthService) Login(_ context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	s.loginReq = &req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &authsvc.LoginResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &users.UserDTO{Email: req.Email},
	}, nil
}

func (s *stubAuthService) Refresh(_ context.Context, req authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	s.refreshReq = &req
	return &authsvc.RefreshResponse{AccessToken: "access2", RefreshToken: "refresh2"}, nil
}

func (s *stubAuthService) Logout(_ context.Context, req authsvc.LogoutRequest) error {
	s.loggedOut = req.AccessToken
	return nil
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRegister(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"no-es-correo","password":"corta","full_name":""}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.registered != nil {
		t.Error("service should not be called on invalid payload")
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRegister(svc, nil)

	body := `{"email":"caja@tienda.co","password":"super-secreta","full_name":"Laura Gómez"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.registered == nil || svc.registered.Email != "caja@tienda.co" {
		t.Errorf("register request not forwarded: %+v", svc.registered)
	}
}

func TestAuthLoginReturnsTokenPair(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, nil)

	body := `{"email":"caja@tienda.co","password":"super-secreta"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data authsvc.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
		t.Errorf("unexpected token pair: %+v", envelope.Data)
	}
}

func TestAuthLoginUnauthorized(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"caja@tienda.co","password":"equivocada"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRefreshForwardsTokens(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRefresh(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"viejo"}`))
	req.Header.Set("Authorization", "Bearer un-jwt-expirado")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.refreshReq == nil || svc.refreshReq.AccessToken != "un-jwt-expirado" || svc.refreshReq.RefreshToken != "viejo" {
		t.Errorf("refresh request not forwarded: %+v", svc.refreshReq)
	}
}

func TestAuthLogoutRequiresBearer(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer un-jwt")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.loggedOut != "un-jwt" {
		t.Errorf("logout token not forwarded: %q", svc.loggedOut)
	}
}
