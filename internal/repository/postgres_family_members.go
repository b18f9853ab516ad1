package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresFamilyMembersRepository 家族成员Repository实现
type PostgresFamilyMembersRepository struct {
	db *sql.DB
}

// NewPostgresFamilyMembersRepository 创建家族成员Repository
func NewPostgresFamilyMembersRepository(db *sql.DB) *PostgresFamilyMembersRepository {
	return &PostgresFamilyMembersRepository{db: db}
}

// 确保实现了接口
var _ FamilyMembersRepository = (*PostgresFamilyMembersRepository)(nil)

const familyMemberColumns = `
	member_id::text,
	user_id::text,
	relationship,
	COALESCE(name, '') as name,
	COALESCE(gender, '') as gender,
	birth_year,
	death_year,
	is_alive,
	generation,
	position,
	parent_id::text,
	COALESCE(conditions, '[]'::jsonb)::text as conditions,
	COALESCE(notes, '') as notes,
	created_at,
	updated_at`

// GetMember 根据member_id获取家族成员
func (r *PostgresFamilyMembersRepository) GetMember(ctx context.Context, userID, memberID string) (*domain.FamilyMember, error) {
	if userID == "" || memberID == "" {
		return nil, fmt.Errorf("user_id and member_id are required")
	}

	query := `SELECT ` + familyMemberColumns + `
		FROM family_members
		WHERE user_id = $1 AND member_id = $2`

	row := r.db.QueryRowContext(ctx, query, userID, memberID)
	member, err := scanFamilyMember(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("family member not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	return member, nil
}

// ListMembers 查询用户的全部家族成员（按 generation, position 排序）
func (r *PostgresFamilyMembersRepository) ListMembers(ctx context.Context, userID string) ([]*domain.FamilyMember, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT ` + familyMemberColumns + `
		FROM family_members
		WHERE user_id = $1
		ORDER BY generation ASC, position ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []*domain.FamilyMember
	for rows.Next() {
		member, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}
	return members, nil
}

// ListMembersWithCondition 查询患有指定疾病的成员
// conditions 为 JSONB 数组，按条目的 name 字段精确匹配
func (r *PostgresFamilyMembersRepository) ListMembersWithCondition(ctx context.Context, userID, conditionName string) ([]*domain.FamilyMember, error) {
	if userID == "" || conditionName == "" {
		return nil, fmt.Errorf("user_id and condition_name are required")
	}

	query := `SELECT ` + familyMemberColumns + `
		FROM family_members
		WHERE user_id = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(COALESCE(conditions, '[]'::jsonb)) AS c
			WHERE c->>'name' = $2
		  )
		ORDER BY generation ASC, position ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, conditionName)
	if err != nil {
		return nil, fmt.Errorf("failed to list members with condition: %w", err)
	}
	defer rows.Close()

	var members []*domain.FamilyMember
	for rows.Next() {
		member, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}
	return members, nil
}

// CreateMember 创建家族成员
func (r *PostgresFamilyMembersRepository) CreateMember(ctx context.Context, userID string, member *domain.FamilyMember) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if member == nil {
		return "", fmt.Errorf("member is required")
	}
	if member.Relationship == "" {
		return "", fmt.Errorf("relationship is required")
	}
	// 不在世的成员必须有去世年份
	if !member.IsAlive && member.DeathYear == nil {
		return "", fmt.Errorf("death_year is required when member is not alive")
	}
	if member.BirthYear != nil && member.DeathYear != nil && *member.BirthYear >= *member.DeathYear {
		return "", fmt.Errorf("birth_year must be before death_year")
	}

	memberID := member.MemberID
	if memberID == "" {
		memberID = uuid.New().String()
	}

	conditionsJSON, err := json.Marshal(conditionsOrEmpty(member.Conditions))
	if err != nil {
		return "", fmt.Errorf("failed to marshal conditions: %w", err)
	}

	var nameArg any = nil
	if member.Name != "" {
		nameArg = member.Name
	}
	var genderArg any = nil
	if member.Gender != "" {
		genderArg = member.Gender
	}
	var parentIDArg any = nil
	if member.ParentID != nil && *member.ParentID != "" {
		parentIDArg = *member.ParentID
	}
	var notesArg any = nil
	if member.Notes != "" {
		notesArg = member.Notes
	}

	query := `
		INSERT INTO family_members (
			member_id, user_id, relationship, name, gender,
			birth_year, death_year, is_alive, generation, position,
			parent_id, conditions, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, err = r.db.ExecContext(ctx, query,
		memberID,
		userID,
		member.Relationship,
		nameArg,
		genderArg,
		member.BirthYear,
		member.DeathYear,
		member.IsAlive,
		member.Generation,
		member.Position,
		parentIDArg,
		string(conditionsJSON),
		notesArg,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create family member: %w", err)
	}
	return memberID, nil
}

// UpdateMember 更新家族成员（整行覆盖）
func (r *PostgresFamilyMembersRepository) UpdateMember(ctx context.Context, userID, memberID string, member *domain.FamilyMember) error {
	if userID == "" || memberID == "" {
		return fmt.Errorf("user_id and member_id are required")
	}
	if member == nil {
		return fmt.Errorf("member is required")
	}
	if !member.IsAlive && member.DeathYear == nil {
		return fmt.Errorf("death_year is required when member is not alive")
	}
	if member.BirthYear != nil && member.DeathYear != nil && *member.BirthYear >= *member.DeathYear {
		return fmt.Errorf("birth_year must be before death_year")
	}

	conditionsJSON, err := json.Marshal(conditionsOrEmpty(member.Conditions))
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	var nameArg any = nil
	if member.Name != "" {
		nameArg = member.Name
	}
	var genderArg any = nil
	if member.Gender != "" {
		genderArg = member.Gender
	}
	var parentIDArg any = nil
	if member.ParentID != nil && *member.ParentID != "" {
		parentIDArg = *member.ParentID
	}
	var notesArg any = nil
	if member.Notes != "" {
		notesArg = member.Notes
	}

	query := `
		UPDATE family_members SET
			relationship = $3,
			name = $4,
			gender = $5,
			birth_year = $6,
			death_year = $7,
			is_alive = $8,
			generation = $9,
			position = $10,
			parent_id = $11,
			conditions = $12::jsonb,
			notes = $13,
			updated_at = NOW()
		WHERE user_id = $1 AND member_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		userID,
		memberID,
		member.Relationship,
		nameArg,
		genderArg,
		member.BirthYear,
		member.DeathYear,
		member.IsAlive,
		member.Generation,
		member.Position,
		parentIDArg,
		string(conditionsJSON),
		notesArg,
	)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("family member not found")
	}
	return nil
}

// DeleteMember 删除家族成员
// 以该成员为父节点的成员 parent_id 置空（树中降级为根）
func (r *PostgresFamilyMembersRepository) DeleteMember(ctx context.Context, userID, memberID string) error {
	if userID == "" || memberID == "" {
		return fmt.Errorf("user_id and member_id are required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE family_members SET parent_id = NULL, updated_at = NOW()
		 WHERE user_id = $1 AND parent_id = $2`,
		userID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to detach children: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM family_members WHERE user_id = $1 AND member_id = $2`,
		userID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("family member not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// scanFamilyMember 扫描单行家族成员（Row 和 Rows 共用）
func scanFamilyMember(row interface{ Scan(...any) error }) (*domain.FamilyMember, error) {
	var member domain.FamilyMember
	var name, gender, parentID, notes sql.NullString
	var birthYear, deathYear sql.NullInt64
	var conditionsRaw string

	err := row.Scan(
		&member.MemberID,
		&member.UserID,
		&member.Relationship,
		&name,
		&gender,
		&birthYear,
		&deathYear,
		&member.IsAlive,
		&member.Generation,
		&member.Position,
		&parentID,
		&conditionsRaw,
		&notes,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// 处理可空字段
	member.Name = name.String
	member.Gender = gender.String
	member.Notes = notes.String
	if birthYear.Valid {
		v := int(birthYear.Int64)
		member.BirthYear = &v
	}
	if deathYear.Valid {
		v := int(deathYear.Int64)
		member.DeathYear = &v
	}
	if parentID.Valid && parentID.String != "" {
		member.ParentID = &parentID.String
	}
	if conditionsRaw != "" {
		if err := json.Unmarshal([]byte(conditionsRaw), &member.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
	}
	if member.Conditions == nil {
		member.Conditions = []domain.FamilyCondition{}
	}
	return &member, nil
}

func conditionsOrEmpty(conditions []domain.FamilyCondition) []domain.FamilyCondition {
	if conditions == nil {
		return []domain.FamilyCondition{}
	}
	return conditions
}
