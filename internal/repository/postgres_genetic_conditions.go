package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresGeneticConditionsRepository 遗传疾病目录Repository实现
type PostgresGeneticConditionsRepository struct {
	db *sql.DB
}

// NewPostgresGeneticConditionsRepository 创建遗传疾病目录Repository
func NewPostgresGeneticConditionsRepository(db *sql.DB) *PostgresGeneticConditionsRepository {
	return &PostgresGeneticConditionsRepository{db: db}
}

var _ GeneticConditionsRepository = (*PostgresGeneticConditionsRepository)(nil)

const geneticConditionColumns = `
	condition_id::text,
	name,
	category,
	inheritance_pattern,
	prevalence,
	penetrance,
	is_hereditary,
	COALESCE(description, '') as description`

// GetByName 按疾病名称获取目录条目
func (r *PostgresGeneticConditionsRepository) GetByName(ctx context.Context, name string) (*domain.GeneticCondition, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	query := `SELECT ` + geneticConditionColumns + `
		FROM genetic_conditions
		WHERE name = $1`

	condition, err := scanGeneticCondition(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("genetic condition not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get genetic condition: %w", err)
	}
	return condition, nil
}

// ListAll 返回全部目录条目（按名称排序）
func (r *PostgresGeneticConditionsRepository) ListAll(ctx context.Context) ([]*domain.GeneticCondition, error) {
	query := `SELECT ` + geneticConditionColumns + `
		FROM genetic_conditions
		ORDER BY name ASC`
	return r.listConditions(ctx, query)
}

// ListHereditary 返回遗传性疾病条目
func (r *PostgresGeneticConditionsRepository) ListHereditary(ctx context.Context) ([]*domain.GeneticCondition, error) {
	query := `SELECT ` + geneticConditionColumns + `
		FROM genetic_conditions
		WHERE is_hereditary = TRUE
		ORDER BY name ASC`
	return r.listConditions(ctx, query)
}

// UpsertCondition 按名称幂等写入
func (r *PostgresGeneticConditionsRepository) UpsertCondition(ctx context.Context, condition *domain.GeneticCondition) error {
	if condition == nil {
		return fmt.Errorf("condition is required")
	}
	if condition.Name == "" || condition.Category == "" {
		return fmt.Errorf("name and category are required")
	}
	if condition.InheritancePattern == "" {
		condition.InheritancePattern = domain.InheritanceMultifactorial
	}

	conditionID := condition.ConditionID
	if conditionID == "" {
		conditionID = uuid.New().String()
	}

	var descArg any = nil
	if condition.Description != "" {
		descArg = condition.Description
	}

	query := `
		INSERT INTO genetic_conditions (
			condition_id, name, category, inheritance_pattern,
			prevalence, penetrance, is_hereditary, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			inheritance_pattern = EXCLUDED.inheritance_pattern,
			prevalence = EXCLUDED.prevalence,
			penetrance = EXCLUDED.penetrance,
			is_hereditary = EXCLUDED.is_hereditary,
			description = EXCLUDED.description`

	_, err := r.db.ExecContext(ctx, query,
		conditionID,
		condition.Name,
		condition.Category,
		string(condition.InheritancePattern),
		condition.Prevalence,
		condition.Penetrance,
		condition.IsHereditary,
		descArg,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert genetic condition: %w", err)
	}
	return nil
}

func (r *PostgresGeneticConditionsRepository) listConditions(ctx context.Context, query string) ([]*domain.GeneticCondition, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list genetic conditions: %w", err)
	}
	defer rows.Close()

	var conditions []*domain.GeneticCondition
	for rows.Next() {
		condition, err := scanGeneticCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan genetic condition: %w", err)
		}
		conditions = append(conditions, condition)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genetic conditions: %w", err)
	}
	return conditions, nil
}

func scanGeneticCondition(row interface{ Scan(...any) error }) (*domain.GeneticCondition, error) {
	var condition domain.GeneticCondition
	var prevalence, penetrance sql.NullFloat64

	err := row.Scan(
		&condition.ConditionID,
		&condition.Name,
		&condition.Category,
		&condition.InheritancePattern,
		&prevalence,
		&penetrance,
		&condition.IsHereditary,
		&condition.Description,
	)
	if err != nil {
		return nil, err
	}
	if prevalence.Valid {
		condition.Prevalence = &prevalence.Float64
	}
	if penetrance.Valid {
		condition.Penetrance = &penetrance.Float64
	}
	return &condition, nil
}
