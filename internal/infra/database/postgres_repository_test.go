package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nurturing_engine/internal/domain/activity"
	"nurturing_engine/internal/domain/contact"
)

func skipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	skipIfNoTestDB(t)

	dsn := os.Getenv("TEST_DATABASE_URL")
	require.NoError(t, RunMigrations(dsn))

	db, err := NewPostgresConnection(dsn)
	require.NoError(t, err)
	_, err = db.Exec(`TRUNCATE activities, contacts`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int { return &v }

func TestPostgresContactRepository_FindAppliesEveryFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresContactRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	cold := &contact.Contact{
		Name: "Kiran", Phone: "+919811111111", Type: contact.TypeCold, Priority: contact.PriorityLow,
		Score: 35, Source: "website", Status: contact.StatusContacted,
		Flags:     []contact.Flag{contact.FlagPriceChanged},
		Profile:   contact.Profile{Urgency: contact.UrgencyExploratory, BudgetMin: 40, PreferredAreas: []string{"Whitefield"}},
		CreatedAt: now.Add(-90 * 24 * time.Hour), UpdatedAt: now.Add(-31 * 24 * time.Hour),
	}
	hot := &contact.Contact{
		Name: "Asha", Type: contact.TypeHot, Priority: contact.PriorityUrgent, Score: 80,
		Source: "referral", Status: contact.StatusNew, CreatedAt: now.Add(-5 * time.Minute), UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, cold))
	require.NoError(t, repo.Create(ctx, hot))

	before := now.Add(-30 * 24 * time.Hour)
	got, err := repo.Find(ctx, contact.Query{
		Types:         []contact.Type{contact.TypeCold},
		Sources:       []string{"website"},
		Priorities:    []contact.Priority{contact.PriorityLow},
		MaxScore:      intPtr(40),
		UpdatedBefore: &before,
		Status:        contact.StatusContacted,
		Flag:          contact.FlagPriceChanged,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cold.ID, got[0].ID)
	assert.Equal(t, cold.Profile, got[0].Profile)
	assert.Equal(t, []contact.Flag{contact.FlagPriceChanged}, got[0].Flags)

	since := now.Add(-15 * time.Minute)
	got, err = repo.Find(ctx, contact.Query{CreatedSince: &since, MinScore: intPtr(70)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, hot.ID, got[0].ID)

	got, err = repo.Find(ctx, contact.Query{MaxScore: intPtr(35)})
	require.NoError(t, err)
	assert.Empty(t, got, "max score is exclusive")
}

func TestPostgresContactRepository_Updates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresContactRepository(db)
	ctx := context.Background()
	old := time.Now().Add(-72 * time.Hour).UTC()

	c := &contact.Contact{Name: "Ravi", Status: contact.StatusContacted, CreatedAt: old, UpdatedAt: old}
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.UpdateScoreAndTags(ctx, c.ID, 67, []string{"hot-lead", "nri"}))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, got.Score)
	assert.Equal(t, []string{"hot-lead", "nri"}, got.Tags)
	assert.WithinDuration(t, old, got.UpdatedAt, time.Second, "rescoring must not touch updated_at")

	require.NoError(t, repo.UpdateStatus(ctx, c.ID, contact.StatusNurturing))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusNurturing, got.Status)
	assert.True(t, got.UpdatedAt.After(old))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), contact.StatusLost), contact.ErrNotFound)
	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, contact.ErrNotFound)
}

func TestPostgresActivityRepository_DedupBackstop(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewPostgresContactRepository(db)
	repo := NewPostgresActivityRepository(db, 24*time.Hour)
	ctx := context.Background()

	c := &contact.Contact{Name: "Kiran"}
	require.NoError(t, contacts.Create(ctx, c))
	at := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	entry := func(kind activity.Kind, createdAt time.Time) *activity.Entry {
		return &activity.Entry{ContactID: c.ID, Kind: kind, RuleID: "cold_lead_reactivation", Outcome: "sent", CreatedAt: createdAt}
	}

	require.NoError(t, repo.Append(ctx, entry(activity.KindNurturing, at)))
	assert.ErrorIs(t, repo.Append(ctx, entry(activity.KindNurturing, at.Add(time.Minute))), activity.ErrDuplicate)
	assert.NoError(t, repo.Append(ctx, entry(activity.KindFollowUp, at.Add(time.Minute))), "only nurturing entries are unique per window")
	assert.NoError(t, repo.Append(ctx, entry(activity.KindNurturing, at.Add(25*time.Hour))))

	recent, err := repo.HasRecent(ctx, c.ID, "cold_lead_reactivation", activity.KindNurturing, at.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, recent)

	recent, err = repo.HasRecent(ctx, c.ID, "weekly_warm_nurture", activity.KindNurturing, at.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, recent)

	list, err := repo.ListByContact(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, at.Add(25*time.Hour), list[0].CreatedAt.UTC())
}

func TestPostgresActivityRepository_BucketOnlyForNurturing(t *testing.T) {
	repo := NewPostgresActivityRepository(nil, time.Hour)
	at := time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)

	b1 := repo.bucket(&activity.Entry{Kind: activity.KindNurturing, CreatedAt: at})
	b2 := repo.bucket(&activity.Entry{Kind: activity.KindNurturing, CreatedAt: at.Add(20 * time.Minute)})
	b3 := repo.bucket(&activity.Entry{Kind: activity.KindNurturing, CreatedAt: at.Add(time.Hour)})

	assert.True(t, b1.Valid)
	assert.Equal(t, b1, b2)
	assert.NotEqual(t, b1, b3)
	assert.False(t, repo.bucket(&activity.Entry{Kind: activity.KindCall, CreatedAt: at}).Valid)
}

func TestBuildContactFilter(t *testing.T) {
	where, args := buildContactFilter(contact.Query{
		Types:    []contact.Type{contact.TypeHot},
		MinScore: intPtr(70),
		Status:   contact.StatusNew,
	})

	assert.Equal(t, []string{"lead_type = ANY($1)", "score >= $2", "status = $3"}, where)
	assert.Len(t, args, 3)

	where, args = buildContactFilter(contact.Query{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}
