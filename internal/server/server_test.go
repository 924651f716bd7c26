package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
	"content_publisher/internal/notify"
	"content_publisher/internal/service"
	"content_publisher/internal/storage/memory"
)

type fakePublisher struct {
	runs        int
	err         error
	resyndicate func(uuid.UUID) (*domain.ItemReport, error)
}

func (p *fakePublisher) RunScheduledPublication(_ context.Context, now time.Time) (*domain.PublicationReport, error) {
	p.runs++
	if p.err != nil {
		return nil, p.err
	}
	report := &domain.PublicationReport{RunAt: now}
	report.Add(domain.ItemReport{
		ID:            uuid.MustParse("0190a4c2-0000-7000-8000-000000000001"),
		Title:         "Spring Launch",
		Slug:          "spring-launch",
		Outcome:       domain.ItemPublished,
		SitePublished: true,
		Platforms: []domain.PublishResult{
			{Platform: domain.PlatformFacebook, Success: true, ExternalID: "fb-1"},
		},
	})
	return report, nil
}

func (p *fakePublisher) Resyndicate(_ context.Context, id uuid.UUID) (*domain.ItemReport, error) {
	return p.resyndicate(id)
}

type fixture struct {
	server    *Server
	store     *memory.Store
	publisher *fakePublisher
	now       time.Time
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	baseURL := "https://example.com/"
	workflow := service.NewWorkflowService(
		store,
		notify.NewSMTPSender(config.SMTPConfig{}),
		baseURL,
		config.ApprovalConfig{DefaultDelay: time.Hour},
		logger,
	)
	publisher := &fakePublisher{}

	srv, err := New(config.ServerConfig{CronSecret: secret}, publisher, service.NewPreviewService(store, baseURL), workflow, logger)
	require.NoError(t, err)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }

	return &fixture{server: srv, store: store, publisher: publisher, now: now}
}

func (f *fixture) pending(t *testing.T, token string) *domain.ContentItem {
	t.Helper()
	item := domain.NewDraft("Spring & Launch", "Short", "Hello **world**", "news", f.now)
	item.Keywords = []string{"go", "cms"}
	item.Sources = []string{"https://example.com/src"}
	require.NoError(t, item.SubmitForApproval(token, "editor@example.com", f.now))
	require.NoError(t, f.store.Create(context.Background(), item))
	return item
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPublishScheduled_Auth(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{name: "valid secret", secret: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "missing header", secret: "s3cret", want: http.StatusUnauthorized},
		{name: "wrong secret", secret: "s3cret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", secret: "s3cret", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "no secret configured", secret: "", header: "Bearer ", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.secret)
			req := httptest.NewRequest(http.MethodPost, "/api/cron/publish-scheduled", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := f.do(req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Zero(t, f.publisher.runs)
			}
		})
	}
}

func TestPublishScheduled_ReturnsReport(t *testing.T) {
	f := newFixture(t, "s3cret")
	req := httptest.NewRequest(http.MethodGet, "/api/cron/publish-scheduled", nil)
	req.Header.Set("Authorization", "Bearer s3cret")

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report struct {
		Published int `json:"published"`
		Failed    int `json:"failed"`
		Items     []struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Slug      string `json:"slug"`
			Platforms []struct {
				Platform string `json:"platform"`
				Success  bool   `json:"success"`
			} `json:"platforms"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Published)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "spring-launch", report.Items[0].Slug)
	require.Len(t, report.Items[0].Platforms, 1)
	assert.Equal(t, "facebook", report.Items[0].Platforms[0].Platform)
}

func TestPublishScheduled_RunError(t *testing.T) {
	f := newFixture(t, "s3cret")
	f.publisher.err = errors.New("db down")
	req := httptest.NewRequest(http.MethodPost, "/api/cron/publish-scheduled", nil)
	req.Header.Set("Authorization", "Bearer s3cret")

	rec := f.do(req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestResyndicate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "ok", path: id.String(), want: http.StatusOK},
		{name: "bad id", path: "not-a-uuid", want: http.StatusBadRequest},
		{name: "missing", path: id.String(), err: domain.ErrNotFound, want: http.StatusNotFound},
		{
			name: "not published",
			path: id.String(),
			err:  &domain.InvalidTransitionError{Action: "resyndicate", From: domain.StatusPublished, Actual: domain.StatusDraft},
			want: http.StatusConflict,
		},
		{
			name: "already in progress",
			path: id.String(),
			err:  fmt.Errorf("claim resyndication: %w", domain.ErrClaimConflict),
			want: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "s3cret")
			f.publisher.resyndicate = func(got uuid.UUID) (*domain.ItemReport, error) {
				assert.Equal(t, id, got)
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.ItemReport{ID: got, Outcome: domain.ItemPublished, Platforms: []domain.PublishResult{}}, nil
			}
			req := httptest.NewRequest(http.MethodPost, "/api/cron/resyndicate/"+tt.path, nil)
			req.Header.Set("Authorization", "Bearer s3cret")

			assert.Equal(t, tt.want, f.do(req).Code)
		})
	}
}

func TestPreview_Pending(t *testing.T) {
	f := newFixture(t, "")
	item := f.pending(t, "tok-1")

	first := f.do(httptest.NewRequest(http.MethodGet, "/preview/tok-1", nil))
	second := f.do(httptest.NewRequest(http.MethodGet, "/preview/tok-1", nil))

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "text/html; charset=utf-8", first.Header().Get("Content-Type"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	golden(t).Assert(t, "preview_pending", first.Body.Bytes())

	stored, err := f.store.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, stored.Status)
	assert.Zero(t, stored.Views)
}

func TestPreview_AlreadyProcessed(t *testing.T) {
	f := newFixture(t, "")
	item := f.pending(t, "tok-2")
	require.NoError(t, item.Approve("editor@example.com", f.now, f.now))
	require.NoError(t, f.store.UpdateIfStatus(context.Background(), item, domain.StatusPendingApproval))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/preview/tok-2", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	golden(t).Assert(t, "preview_processed", rec.Body.Bytes())
	assert.NotContains(t, rec.Body.String(), "/approve/")
}

func TestPreview_UnknownToken(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/preview/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "This approval link is not valid.")
}

func TestApproveForm_DoesNotTransition(t *testing.T) {
	f := newFixture(t, "")
	item := f.pending(t, "tok-3")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/approve/tok-3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/approve/tok-3"`)
	stored, err := f.store.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingApproval, stored.Status)
}

func TestApprove_SchedulesAndConsumesToken(t *testing.T) {
	f := newFixture(t, "")
	item := f.pending(t, "tok-4")
	form := url.Values{"scheduled_for": {"2030-01-02T15:04:05Z"}}

	req := httptest.NewRequest(http.MethodPost, "/approve/tok-4", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Approved")

	stored, err := f.store.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Equal(t, time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC), *stored.ScheduledFor)
	assert.Equal(t, "editor@example.com", *stored.ApprovedBy)

	again := httptest.NewRequest(http.MethodPost, "/reject/tok-4", strings.NewReader("reason=late"))
	again.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, f.do(again).Code)
}

func TestApprove_InvalidSchedule(t *testing.T) {
	f := newFixture(t, "")
	f.pending(t, "tok-5")

	req := httptest.NewRequest(http.MethodPost, "/approve/tok-5", strings.NewReader("scheduled_for=tomorrow"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestReject_RecordsReason(t *testing.T) {
	f := newFixture(t, "")
	item := f.pending(t, "tok-6")

	req := httptest.NewRequest(http.MethodPost, "/reject/tok-6", strings.NewReader("reason=needs+sources"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := f.store.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	assert.Equal(t, "needs sources", *stored.RejectionReason)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, "")
	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "/preview/{token}", redactToken("/preview/abc"))
	assert.Equal(t, "/api/cron/publish-scheduled", redactToken("/api/cron/publish-scheduled"))
}

type slowPublisher struct {
	started  chan struct{}
	finished atomic.Bool
}

func (p *slowPublisher) RunScheduledPublication(_ context.Context, now time.Time) (*domain.PublicationReport, error) {
	close(p.started)
	time.Sleep(300 * time.Millisecond)
	p.finished.Store(true)
	return &domain.PublicationReport{RunAt: now}, nil
}

func (p *slowPublisher) Resyndicate(context.Context, uuid.UUID) (*domain.ItemReport, error) {
	return nil, domain.ErrNotFound
}

func TestServe_WaitsForPublicationRunOnShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := &slowPublisher{started: make(chan struct{})}
	cfg := config.ServerConfig{CronSecret: "s3cret", ShutdownTimeout: 20 * time.Millisecond}
	srv, err := New(cfg, publisher, service.NewPreviewService(memory.New(), "https://example.com"), nil, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	go func() {
		req, err := http.NewRequest(http.MethodPost, "http://"+ln.Addr().String()+"/api/cron/publish-scheduled", nil)
		if err != nil {
			return
		}
		req.Header.Set("Authorization", "Bearer s3cret")
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
		}
	}()

	select {
	case <-publisher.started:
	case <-time.After(5 * time.Second):
		t.Fatal("publication run never started")
	}
	cancel()

	select {
	case err := <-served:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, publisher.finished.Load(), "serve returned before the run finished")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}
}

func TestPublishScheduled_RefusedWhileDraining(t *testing.T) {
	f := newFixture(t, "s3cret")
	f.server.runs.drain()

	req := httptest.NewRequest(http.MethodPost, "/api/cron/publish-scheduled", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := f.do(req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, f.publisher.runs)
}
