//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"content_publisher/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_content_items.up.sql"),
			filepath.Join(migrationsPath, "002_create_syndication_records.up.sql"),
			filepath.Join(migrationsPath, "003_create_publication_runs.up.sql"),
			filepath.Join(migrationsPath, "004_add_resyndication_lease.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM syndication_records")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM content_items")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM publication_runs")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) createApproved(title string, scheduledFor time.Time) *domain.ContentItem {
	store := NewContentStore(s.db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	item := domain.NewDraft(title, "excerpt", "# body", "news", now)
	item.Keywords = []string{"go", "postgres"}
	item.Hashtags = []string{"#go"}
	s.Require().NoError(store.Create(s.ctx, item))

	pending := item.Clone()
	s.Require().NoError(pending.SubmitForApproval(uuid.NewString(), "editor@example.com", now))
	s.Require().NoError(store.UpdateIfStatus(s.ctx, pending, domain.StatusDraft))

	approved := pending.Clone()
	s.Require().NoError(approved.Approve("editor@example.com", scheduledFor, now))
	s.Require().NoError(store.UpdateIfStatus(s.ctx, approved, domain.StatusPendingApproval))
	return approved
}

func (s *PostgresIntegrationSuite) TestContentStore_CreateAndGet() {
	store := NewContentStore(s.db)
	item := s.createApproved("Round Trip", time.Now().Add(time.Hour))

	byID, err := store.GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("round-trip", byID.Slug)
	s.Equal(domain.StatusApproved, byID.Status)
	s.Equal([]string{"go", "postgres"}, byID.Keywords)
	s.Equal([]string{"#go"}, byID.Hashtags)
	s.Empty(byID.Sources)
	s.NotNil(byID.ApprovedAt)
	s.Nil(byID.PublishedAt)

	byToken, err := store.GetByToken(s.ctx, *item.ApprovalToken)
	s.Require().NoError(err)
	s.Equal(item.ID, byToken.ID)

	bySlug, err := store.GetBySlug(s.ctx, "round-trip")
	s.Require().NoError(err)
	s.Equal(item.ID, bySlug.ID)

	_, err = store.GetByToken(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestContentStore_ListDue_InclusiveBoundary() {
	store := NewContentStore(s.db)
	now := time.Now().UTC().Truncate(time.Second)

	onTime := s.createApproved("On Time", now)
	past := s.createApproved("Past", now.Add(-time.Hour))
	s.createApproved("Future", now.Add(time.Second))

	due, err := store.ListDue(s.ctx, now, 10)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Equal(past.ID, due[0].ID)
	s.Equal(onTime.ID, due[1].ID)
}

func (s *PostgresIntegrationSuite) TestContentStore_ConcurrentClaim_OnlyOneWins() {
	store := NewContentStore(s.db)
	item := s.createApproved("Contended", time.Now().Add(-time.Minute))

	const runners = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < runners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claim := item.Clone()
			_ = claim.Publish(time.Now().UTC())
			err := store.UpdateIfStatus(s.ctx, claim, domain.StatusApproved)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				wins++
			case domain.ErrClaimConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(runners-1, conflicts)

	stored, err := store.GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPublished, stored.Status)
	s.NotNil(stored.PublishedAt)
}

func (s *PostgresIntegrationSuite) TestContentStore_UpdateIfStatus_NotFound() {
	store := NewContentStore(s.db)
	ghost := domain.NewDraft("Ghost", "", "", "", time.Now())

	err := store.UpdateIfStatus(s.ctx, ghost, domain.StatusDraft)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestContentStore_SetPlatformPostIDs_KeepsExisting() {
	store := NewContentStore(s.db)
	item := s.createApproved("Ids", time.Now())

	err := store.SetPlatformPostIDs(s.ctx, item.ID, map[domain.Platform]string{
		domain.PlatformFacebook: "fb-1",
		domain.PlatformTwitter:  "tw-1",
	})
	s.Require().NoError(err)

	err = store.SetPlatformPostIDs(s.ctx, item.ID, map[domain.Platform]string{
		domain.PlatformFacebook: "fb-2",
		domain.PlatformLinkedIn: "li-1",
	})
	s.Require().NoError(err)

	stored, err := store.GetByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("fb-1", *stored.FacebookPostID)
	s.Equal("tw-1", *stored.TwitterPostID)
	s.Equal("li-1", *stored.LinkedInPostID)
	s.Nil(stored.InstagramPostID)
}

func (s *PostgresIntegrationSuite) TestSyndicationStore_AppendOnlyAndCascade() {
	records := NewSyndicationStore(s.db)
	item := s.createApproved("Audit", time.Now())
	now := time.Now().UTC().Truncate(time.Microsecond)

	payload, _ := json.Marshal(map[string]string{"message": "hello"})
	for i := 0; i < 2; i++ {
		s.Require().NoError(records.Append(s.ctx, domain.NewSyndicationRecord(item.ID, domain.PublishResult{
			Platform: domain.PlatformTwitter, Error: "boom", Payload: payload,
		}, now)))
	}
	s.Require().NoError(records.Append(s.ctx, domain.NewSyndicationRecord(item.ID, domain.PublishResult{
		Platform: domain.PlatformTwitter, Success: true, ExternalID: "123",
	}, now)))

	list, err := records.ListByContent(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Len(list, 3)
	s.Equal(domain.OutcomeFailed, list[0].Outcome)
	s.JSONEq(`{"message":"hello"}`, string(list[0].Payload))
	s.Equal(domain.OutcomePosted, list[2].Outcome)

	_, err = s.db.ExecContext(s.ctx, "DELETE FROM content_items WHERE id = $1", item.ID)
	s.Require().NoError(err)

	list, err = records.ListByContent(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresIntegrationSuite) TestRunStore_RecordAndLatest() {
	runs := NewRunStore(s.db)

	latest, err := runs.Latest(s.ctx)
	s.Require().NoError(err)
	s.Nil(latest)

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(runs.Record(s.ctx, &domain.PublicationReport{RunAt: now.Add(-time.Hour), Published: 1}))
	s.Require().NoError(runs.Record(s.ctx, &domain.PublicationReport{RunAt: now, Published: 2, Failed: 1, Duration: 1500 * time.Millisecond}))

	latest, err = runs.Latest(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, latest.Published)
	s.Equal(1, latest.Failed)
	s.Equal(int64(1500), latest.DurationMS)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	records := NewSyndicationStore(s.db)
	item := s.createApproved("Tx", time.Now())

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		rec := domain.NewSyndicationRecord(item.ID, domain.PublishResult{Platform: domain.PlatformFacebook, Success: true}, time.Now())
		if err := records.Append(ctx, rec); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	list, err := records.ListByContent(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresIntegrationSuite) TestContentStore_Create_DuplicateSlug() {
	store := NewContentStore(s.db)
	now := time.Now().UTC()

	s.Require().NoError(store.Create(s.ctx, domain.NewDraft("Same Title", "", "", "", now)))
	err := store.Create(s.ctx, domain.NewDraft("Same Title", "", "", "", now))

	s.ErrorIs(err, domain.ErrSlugTaken)
}

func (s *PostgresIntegrationSuite) TestContentStore_ResyndicationLease() {
	store := NewContentStore(s.db)
	item := s.createApproved("Leased", time.Now().Add(-time.Minute))
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := store.ClaimResyndication(s.ctx, item.ID, now, now.Add(time.Minute))
	s.ErrorIs(err, domain.ErrClaimConflict, "approved items cannot be resyndicated")

	published := item.Clone()
	s.Require().NoError(published.Publish(now))
	s.Require().NoError(store.UpdateIfStatus(s.ctx, published, domain.StatusApproved))
	s.Require().NoError(store.SetPlatformPostIDs(s.ctx, item.ID, map[domain.Platform]string{
		domain.PlatformFacebook: "fb-1",
	}))

	claimed, err := store.ClaimResyndication(s.ctx, item.ID, now, now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(domain.StatusPublished, claimed.Status)
	s.Require().NotNil(claimed.FacebookPostID)
	s.Equal("fb-1", *claimed.FacebookPostID)

	_, err = store.ClaimResyndication(s.ctx, item.ID, now.Add(time.Second), now.Add(time.Minute))
	s.ErrorIs(err, domain.ErrClaimConflict)

	_, err = store.ClaimResyndication(s.ctx, item.ID, now.Add(2*time.Minute), now.Add(3*time.Minute))
	s.NoError(err, "an expired lease is taken over")

	s.Require().NoError(store.ReleaseResyndication(s.ctx, item.ID))
	_, err = store.ClaimResyndication(s.ctx, item.ID, now, now.Add(time.Minute))
	s.NoError(err)

	_, err = store.ClaimResyndication(s.ctx, uuid.New(), now, now.Add(time.Minute))
	s.ErrorIs(err, domain.ErrNotFound)
}
