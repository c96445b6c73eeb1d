package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svsu-dev/samadhan/internal/domain"
)

func testRecord() domain.IssueRecord {
	return domain.IssueRecord{
		ID:            "7f3c2a1e-9d4b-4c6a-8e2f-1a2b3c4d5e6f",
		ApplicantName: "Asha Rao",
		Email:         "asha@svsu.ac.in",
		IssueText:     "WiFi is down",
		Department:    domain.DeptLibrary,
		Subject:       "WiFi Restoration Request",
		Body:          "Dear Sir,\n\nThe WiFi is down.\n\nSincerely",
		CreatedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIssueRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := testRecord()
	mock.ExpectExec("INSERT INTO issues").
		WithArgs(rec.ID, rec.ApplicantName, rec.Email, rec.IssueText,
			string(rec.Department), rec.Subject, rec.Body, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewIssueRepo(db)
	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepo_InsertWrapsFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO issues").
		WillReturnError(errors.New("connection reset"))

	repo := NewIssueRepo(db)
	insertErr := repo.Insert(context.Background(), testRecord())

	var pe *domain.PersistenceError
	require.ErrorAs(t, insertErr, &pe)
	assert.Equal(t, "insert issue", pe.Op)
}

func TestIssueRepo_ListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"subject", "department", "created_at"}).
		AddRow("WiFi Restoration Request", "Library", now).
		AddRow("Exam Hall Fans", "Examination", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT subject, department, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	repo := NewIssueRepo(db)
	got, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "WiFi Restoration Request", got[0].Subject)
	assert.Equal(t, domain.DeptLibrary, got[0].Department)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepo_ListRecentDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT subject, department, created_at").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "department", "created_at"}))

	repo := NewIssueRepo(db)
	got, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepo_ListRecentWrapsFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT subject, department, created_at").
		WillReturnError(errors.New("relation does not exist"))

	repo := NewIssueRepo(db)
	_, listErr := repo.ListRecent(context.Background(), 10)

	var pe *domain.PersistenceError
	require.ErrorAs(t, listErr, &pe)
	assert.Equal(t, "list recent issues", pe.Op)
}
