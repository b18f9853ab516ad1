package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthvault-data/internal/domain"
)

func setupMockFamilyMembersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresFamilyMembersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresFamilyMembersRepository(db)
	return db, mock, repo
}

func familyMemberRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"member_id", "user_id", "relationship", "name", "gender",
		"birth_year", "death_year", "is_alive", "generation", "position",
		"parent_id", "conditions", "notes", "created_at", "updated_at",
	})
}

// ============================================
// 基础 CRUD 操作测试
// ============================================

func TestGetMember_Success(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	memberID := uuid.New().String()
	now := time.Now()

	rows := familyMemberRows().AddRow(
		memberID, userID, "mother", "Jane", "female",
		1955, nil, true, -1, 0,
		nil, `[{"name":"Type 2 Diabetes","diagnosed_year":2010,"severity":"moderate","status":"managed"}]`,
		"", now, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID, memberID).
		WillReturnRows(rows)

	member, err := repo.GetMember(ctx, userID, memberID)

	require.NoError(t, err)
	assert.Equal(t, memberID, member.MemberID)
	assert.Equal(t, "mother", member.Relationship)
	assert.Equal(t, -1, member.Generation)
	require.NotNil(t, member.BirthYear)
	assert.Equal(t, 1955, *member.BirthYear)
	assert.Nil(t, member.DeathYear)
	require.Len(t, member.Conditions, 1)
	assert.Equal(t, "Type 2 Diabetes", member.Conditions[0].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMember_NotFound(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	memberID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID, memberID).
		WillReturnError(sql.ErrNoRows)

	member, err := repo.GetMember(ctx, userID, memberID)

	assert.Error(t, err)
	assert.Nil(t, member)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMember_MissingUserID(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	member, err := repo.GetMember(context.Background(), "", uuid.New().String())

	assert.Error(t, err)
	assert.Nil(t, member)
	assert.Contains(t, err.Error(), "required")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMembers_EmptyConditionsDefaulted(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	now := time.Now()

	rows := familyMemberRows().
		AddRow(uuid.New().String(), userID, "father", "", "", nil, nil, true, -1, 0, nil, `[]`, "", now, now).
		AddRow(uuid.New().String(), userID, "sister", "", "", nil, nil, true, 0, 1, nil, `[]`, "", now, now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	members, err := repo.ListMembers(ctx, userID)

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.NotNil(t, members[0].Conditions)
	assert.Empty(t, members[0].Conditions)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMember_Success(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()

	mock.ExpectExec(`INSERT INTO family_members`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	memberID, err := repo.CreateMember(ctx, userID, &domain.FamilyMember{
		Relationship: "mother",
		IsAlive:      true,
		Generation:   -1,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, memberID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMember_DeceasedRequiresDeathYear(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	_, err := repo.CreateMember(context.Background(), uuid.New().String(), &domain.FamilyMember{
		Relationship: "grandfather",
		IsAlive:      false,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "death_year")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMember_BirthAfterDeathRejected(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	birth := 1990
	death := 1980
	_, err := repo.CreateMember(context.Background(), uuid.New().String(), &domain.FamilyMember{
		Relationship: "uncle",
		IsAlive:      false,
		BirthYear:    &birth,
		DeathYear:    &death,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "birth_year")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMember_NotFound(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	memberID := uuid.New().String()

	mock.ExpectExec(`UPDATE family_members`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMember(ctx, userID, memberID, &domain.FamilyMember{
		Relationship: "brother",
		IsAlive:      true,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMember_DetachesChildren(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	memberID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE family_members SET parent_id = NULL`).
		WithArgs(userID, memberID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM family_members`).
		WithArgs(userID, memberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteMember(ctx, userID, memberID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMember_NotFoundRollsBack(t *testing.T) {
	db, mock, repo := setupMockFamilyMembersDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	memberID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE family_members SET parent_id = NULL`).
		WithArgs(userID, memberID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM family_members`).
		WithArgs(userID, memberID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteMember(ctx, userID, memberID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}
