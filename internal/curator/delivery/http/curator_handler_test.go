package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePreferenceService struct {
	recorded map[uint]string
	err      error
}

func (f *fakePreferenceService) RecordFeedback(_ context.Context, articleID uint, rating string) error {
	if f.err != nil {
		return f.err
	}
	if f.recorded == nil {
		f.recorded = map[uint]string{}
	}
	f.recorded[articleID] = rating
	return nil
}

func (f *fakePreferenceService) GetStats(_ context.Context) (*dto.StatsResponse, error) {
	return &dto.StatsResponse{TotalArticles: 42}, nil
}

func newHandlerFixture(t *testing.T, svc *fakePreferenceService) *echo.Echo {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	e := echo.New()
	h := NewCuratorHandler(nil, svc, log)
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestTriggerTask_RejectsUnknownType(t *testing.T) {
	e := newHandlerFixture(t, &fakePreferenceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/reindex", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordFeedback_StoresRating(t *testing.T) {
	svc := &fakePreferenceService{}
	e := newHandlerFixture(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/7/feedback",
		strings.NewReader(`{"rating":"like"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "like", svc.recorded[7])
}

func TestRecordFeedback_RejectsBadID(t *testing.T) {
	e := newHandlerFixture(t, &fakePreferenceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/abc/feedback",
		strings.NewReader(`{"rating":"like"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStats_ReturnsCounters(t *testing.T) {
	e := newHandlerFixture(t, &fakePreferenceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_articles":42`)
}
