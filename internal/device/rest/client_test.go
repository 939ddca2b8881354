package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/device/rest"
	"github.com/jhoicas/dailyprofit-api/internal/device/store"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
)

func TestResolveBaseURLPrefersStoredOverride(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Save(rest.KeyCustomAPIURL, "https://api.dailyprofit.example/api"))
	t.Setenv(rest.EnvAPIURL, "http://env:5000/api")

	assert.Equal(t, "https://api.dailyprofit.example/api", rest.ResolveBaseURL(s))
}

func TestResolveBaseURLFallsBackToEnv(t *testing.T) {
	t.Setenv(rest.EnvAPIURL, "http://env:5000/api")
	assert.Equal(t, "http://env:5000/api", rest.ResolveBaseURL(store.NewMemoryStore()))
}

func TestGoogleLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/google", r.URL.Path)

		var in dto.GoogleLoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "google-id-token", in.IDToken)

		json.NewEncoder(w).Encode(dto.LoginResponse{Token: "jwt-1"})
	}))
	defer srv.Close()

	out, err := rest.NewClient(srv.URL).GoogleLogin(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", out.Token)
}

func TestSyncAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/sync", r.URL.Path)
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(dto.SyncAccepted{Success: true, Stats: dto.SyncStats{Products: 2}})
	}))
	defer srv.Close()

	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{{ID: "biz-1", Name: "Café"}}}
	accepted, conflict, err := rest.NewClient(srv.URL).Sync(context.Background(), "jwt-1", payload)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NotNil(t, accepted)
	assert.True(t, accepted.Success)
	assert.Equal(t, 2, accepted.Stats.Products)
}

func TestSyncConflictIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(dto.SyncConflictResponse{Error: dto.ConflictPlanLimit, Limit: 1})
	}))
	defer srv.Close()

	accepted, conflict, err := rest.NewClient(srv.URL).Sync(context.Background(), "jwt-1", dto.SyncPayload{})
	require.NoError(t, err, "el 409 es un veredicto estructurado, no una falla")
	assert.Nil(t, accepted)
	require.NotNil(t, conflict)
	assert.Equal(t, dto.ConflictPlanLimit, conflict.Error)
	assert.Equal(t, 1, conflict.Limit)
}

func TestSyncServerErrorIncludesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}))
	defer srv.Close()

	_, _, err := rest.NewClient(srv.URL).Sync(context.Background(), "stale", dto.SyncPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
}

func TestGenerateInviteTimesOut(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	// context del llamador más corto que la ventana fija del cliente
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := rest.NewClient(srv.URL).GenerateInvite(ctx, "jwt-1", "biz-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, rest.ErrInviteTimeout)
	<-started
}

func TestJoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/join", r.URL.Path)
		var in dto.JoinRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "123456", in.Code)
		json.NewEncoder(w).Encode(dto.JoinResponse{Business: entity.BusinessProfile{ID: "biz-1"}})
	}))
	defer srv.Close()

	out, err := rest.NewClient(srv.URL).Join(context.Background(), "jwt-1", "123456")
	require.NoError(t, err)
	assert.Equal(t, "biz-1", out.Business.ID)
}
