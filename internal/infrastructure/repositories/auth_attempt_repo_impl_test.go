package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"licensekit.backend/internal/domain/entities"
)

func appendAttempt(t *testing.T, repo *AuthAttemptRepository, ip string, status entities.AuthAttemptStatus, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Append(context.Background(), &entities.AuthAttempt{
		EventType:   "api_auth",
		IPAddress:   ip,
		UserAgent:   "test-agent",
		Status:      status,
		AttemptTime: at,
	}))
}

func TestAuthAttemptRepository_CountFailedSince(t *testing.T) {
	db := newTestDB(t)
	createAuthAttemptTable(t, db)
	repo := NewAuthAttemptRepository(db)
	ctx := context.Background()
	now := time.Now()

	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now.Add(-10*time.Minute))
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now.Add(-5*time.Minute))
	// Outside the window.
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now.Add(-2*time.Hour))
	// Success and other IPs do not count.
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptSuccess, now.Add(-1*time.Minute))
	appendAttempt(t, repo, "5.6.7.8", entities.AuthAttemptFailed, now.Add(-1*time.Minute))

	count, err := repo.CountFailedSince(ctx, "1.2.3.4", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestAuthAttemptRepository_ClearFailedForIP(t *testing.T) {
	db := newTestDB(t)
	createAuthAttemptTable(t, db)
	repo := NewAuthAttemptRepository(db)
	ctx := context.Background()
	now := time.Now()

	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now)
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptSuccess, now)
	appendAttempt(t, repo, "5.6.7.8", entities.AuthAttemptFailed, now)

	require.NoError(t, repo.ClearFailedForIP(ctx, "1.2.3.4"))

	count, err := repo.CountFailedSince(ctx, "1.2.3.4", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	otherCount, err := repo.CountFailedSince(ctx, "5.6.7.8", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), otherCount)
}

func TestAuthAttemptRepository_PurgeBefore(t *testing.T) {
	db := newTestDB(t)
	createAuthAttemptTable(t, db)
	repo := NewAuthAttemptRepository(db)
	ctx := context.Background()
	now := time.Now()

	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now.Add(-100*24*time.Hour))
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptSuccess, now.Add(-100*24*time.Hour))
	appendAttempt(t, repo, "1.2.3.4", entities.AuthAttemptFailed, now)

	purged, err := repo.PurgeBefore(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), purged)

	count, err := repo.CountFailedSince(ctx, "1.2.3.4", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
