package analytics

import (
	"sort"

	"healthvault-data/internal/domain"
)

// FamilyTreeNode 家族树节点
// 每个家族成员对应一个节点；父引用缺失或悬空时该节点提升为根
type FamilyTreeNode struct {
	MemberID     string                   `json:"member_id"`
	Name         string                   `json:"name,omitempty"`
	Relationship string                   `json:"relationship"`
	Gender       string                   `json:"gender,omitempty"`
	BirthYear    *int                     `json:"birth_year,omitempty"`
	DeathYear    *int                     `json:"death_year,omitempty"`
	IsAlive      bool                     `json:"is_alive"`
	Generation   int                      `json:"generation"`
	Position     int                      `json:"position"`
	Conditions   []domain.FamilyCondition `json:"conditions"`
	Children     []*FamilyTreeNode        `json:"children"`
}

// BuildFamilyTree 将扁平成员列表组装为森林
// 单次遍历 O(n)：先建 id→node 索引，再解析父引用。
// ParentID 为空或指向列表外的成员时降级为根节点（不视为错误）。
// 根节点按 generation 升序、再按 position 升序排序；子节点不排序。
func BuildFamilyTree(members []*domain.FamilyMember) []*FamilyTreeNode {
	nodes := make(map[string]*FamilyTreeNode, len(members))
	for _, m := range members {
		nodes[m.MemberID] = &FamilyTreeNode{
			MemberID:     m.MemberID,
			Name:         m.Name,
			Relationship: m.Relationship,
			Gender:       m.Gender,
			BirthYear:    m.BirthYear,
			DeathYear:    m.DeathYear,
			IsAlive:      m.IsAlive,
			Generation:   m.Generation,
			Position:     m.Position,
			Conditions:   m.Conditions,
			Children:     []*FamilyTreeNode{},
		}
	}

	var roots []*FamilyTreeNode
	for _, m := range members {
		node := nodes[m.MemberID]
		if m.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*m.ParentID]
		if !ok {
			// 悬空父引用：提升为根（产品待确认行为，当前按数据修复处理）
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].Generation != roots[j].Generation {
			return roots[i].Generation < roots[j].Generation
		}
		return roots[i].Position < roots[j].Position
	})

	return roots
}
