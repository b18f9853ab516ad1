package domain

import (
	"time"
)

// FamilyMember 家族成员领域模型（对应 family_members 表）
type FamilyMember struct {
	// 主键
	MemberID string `db:"member_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	// 亲属关系（约25个标签：mother/father/brother/.../paternal_grandmother 等）
	Relationship string `db:"relationship"` // VARCHAR(50), NOT NULL

	// 展示信息（可选，允许匿名记录）
	Name   string `db:"name"`   // VARCHAR(100), nullable
	Gender string `db:"gender"` // VARCHAR(20), nullable (male/female/other)

	// 年份（BirthYear < DeathYear，两者都存在时）
	BirthYear *int `db:"birth_year"` // INTEGER, nullable
	DeathYear *int `db:"death_year"` // INTEGER, nullable（IsAlive=false 时必填）

	IsAlive bool `db:"is_alive"` // BOOLEAN, NOT NULL, DEFAULT TRUE

	// 家族树位置
	// Generation 由 relationship 推导（-3..3），除非显式提供；仅在 relationship 变更时重算
	Generation int `db:"generation"` // INTEGER, NOT NULL
	// Position 用于区分同代兄弟姐妹的排序
	Position int `db:"position"` // INTEGER, NOT NULL, DEFAULT 0

	// 父节点引用（自引用，构成森林；悬空引用降级为根节点，不报错）
	ParentID *string `db:"parent_id"` // UUID, nullable

	// 病史（JSONB 有序数组）
	Conditions []FamilyCondition `db:"conditions"` // JSONB, NOT NULL, DEFAULT '[]'

	// 备注
	Notes string `db:"notes"` // TEXT, nullable

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}

// FamilyCondition 家族成员病史条目（JSONB 数组元素）
type FamilyCondition struct {
	Name          string `json:"name"`
	DiagnosedYear *int   `json:"diagnosed_year,omitempty"`
	Severity      string `json:"severity,omitempty"` // mild/moderate/severe
	Status        string `json:"status,omitempty"`   // active/managed/resolved
}

// HasCondition 判断成员是否患有指定疾病（按名称精确匹配）
func (m *FamilyMember) HasCondition(name string) bool {
	for _, c := range m.Conditions {
		if c.Name == name {
			return true
		}
	}
	return false
}
