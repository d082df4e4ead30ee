// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goccy/go-json"

	"github.com/crescendo-live/crescendo/internal/platform/constants"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func performRequest(handler http.HandlerFunc, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

func TestLivenessAlwaysOK(t *testing.T) {
	liveness, _ := NewHealthHandlers(HealthDependencies{}, testLogger())

	recorder := performRequest(liveness, "/health")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), constants.AppName)
	assert.Contains(t, recorder.Body.String(), constants.AppVersion)
}

func TestReadinessOKWhenDependenciesHealthy(t *testing.T) {
	_, readiness := NewHealthHandlers(HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return nil },
	}, testLogger())

	recorder := performRequest(readiness, "/ready")

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestReadinessFailsWhenDatabaseDown(t *testing.T) {
	_, readiness := NewHealthHandlers(HealthDependencies{
		CheckDatabase: func() error { return errors.New("connection refused") },
		CheckCache:    func() error { return nil },
	}, testLogger())

	recorder := performRequest(readiness, "/ready")

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "degraded")
}

func TestReadinessSurvivesCacheOutage(t *testing.T) {
	_, readiness := NewHealthHandlers(HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return errors.New("redis down") },
	}, testLogger())

	recorder := performRequest(readiness, "/ready")

	assert.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Data struct {
			Status string `json:"status"`
			Checks []struct {
				Name string `json:"name"`
				IsOK bool   `json:"ok"`
			} `json:"checks"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "ready", payload.Data.Status)
}
