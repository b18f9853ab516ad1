package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthvault-data/internal/analytics"
	"healthvault-data/internal/domain"
	"healthvault-data/internal/service"
	"healthvault-data/internal/store"
)

// ============================================
// 测试用内存实现
// ============================================

// fakeKV 仅用于单元测试（内存 KV + TTL）
type fakeKV struct {
	mu   sync.Mutex
	data map[string]fakeKVItem
}

type fakeKVItem struct {
	value   string
	expires time.Time // zero = no ttl
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]fakeKVItem)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		delete(f.data, key)
		return "", store.ErrMiss
	}
	return item.value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	f.data[key] = fakeKVItem{value: value, expires: exp}
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	return nil, nil
}

func (f *fakeKV) put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fakeKVItem{value: value}
}

// fakeMembersRepo 内存家族成员存储
type fakeMembersRepo struct {
	members   map[string]*domain.FamilyMember
	listCalls int
}

func newFakeMembersRepo() *fakeMembersRepo {
	return &fakeMembersRepo{members: make(map[string]*domain.FamilyMember)}
}

func (f *fakeMembersRepo) GetMember(ctx context.Context, userID, memberID string) (*domain.FamilyMember, error) {
	m, ok := f.members[memberID]
	if !ok {
		return nil, fmt.Errorf("family member not found")
	}
	return m, nil
}

func (f *fakeMembersRepo) ListMembers(ctx context.Context, userID string) ([]*domain.FamilyMember, error) {
	f.listCalls++
	var members []*domain.FamilyMember
	for _, m := range f.members {
		members = append(members, m)
	}
	return members, nil
}

func (f *fakeMembersRepo) ListMembersWithCondition(ctx context.Context, userID, conditionName string) ([]*domain.FamilyMember, error) {
	var members []*domain.FamilyMember
	for _, m := range f.members {
		if m.HasCondition(conditionName) {
			members = append(members, m)
		}
	}
	return members, nil
}

func (f *fakeMembersRepo) CreateMember(ctx context.Context, userID string, member *domain.FamilyMember) (string, error) {
	id := member.MemberID
	if id == "" {
		id = fmt.Sprintf("member-%d", len(f.members)+1)
	}
	member.MemberID = id
	member.UserID = userID
	f.members[id] = member
	return id, nil
}

func (f *fakeMembersRepo) UpdateMember(ctx context.Context, userID, memberID string, member *domain.FamilyMember) error {
	if _, ok := f.members[memberID]; !ok {
		return fmt.Errorf("family member not found")
	}
	member.MemberID = memberID
	f.members[memberID] = member
	return nil
}

func (f *fakeMembersRepo) DeleteMember(ctx context.Context, userID, memberID string) error {
	if _, ok := f.members[memberID]; !ok {
		return fmt.Errorf("family member not found")
	}
	delete(f.members, memberID)
	return nil
}

// fakeConditionsRepo 内存遗传疾病目录
type fakeConditionsRepo struct {
	conditions map[string]*domain.GeneticCondition
}

func newFakeConditionsRepo() *fakeConditionsRepo {
	return &fakeConditionsRepo{conditions: make(map[string]*domain.GeneticCondition)}
}

func (f *fakeConditionsRepo) GetByName(ctx context.Context, name string) (*domain.GeneticCondition, error) {
	c, ok := f.conditions[name]
	if !ok {
		return nil, fmt.Errorf("condition not found")
	}
	return c, nil
}

func (f *fakeConditionsRepo) ListAll(ctx context.Context) ([]*domain.GeneticCondition, error) {
	var all []*domain.GeneticCondition
	for _, c := range f.conditions {
		all = append(all, c)
	}
	return all, nil
}

func (f *fakeConditionsRepo) ListHereditary(ctx context.Context) ([]*domain.GeneticCondition, error) {
	var hereditary []*domain.GeneticCondition
	for _, c := range f.conditions {
		if c.IsHereditary {
			hereditary = append(hereditary, c)
		}
	}
	return hereditary, nil
}

func (f *fakeConditionsRepo) UpsertCondition(ctx context.Context, condition *domain.GeneticCondition) error {
	f.conditions[condition.Name] = condition
	return nil
}

// fakeAssessmentsRepo 内存评估存储
type fakeAssessmentsRepo struct {
	assessments  map[string][]*domain.FamilyRiskAssessment // user_id → 评估
	predictions  []*domain.HealthRiskPrediction
	patterns     []*domain.HealthDeteriorationPattern
	replaceCalls int
}

func newFakeAssessmentsRepo() *fakeAssessmentsRepo {
	return &fakeAssessmentsRepo{assessments: make(map[string][]*domain.FamilyRiskAssessment)}
}

func (f *fakeAssessmentsRepo) ReplaceFamilyAssessments(ctx context.Context, userID string, assessments []*domain.FamilyRiskAssessment) error {
	f.replaceCalls++
	f.assessments[userID] = assessments
	return nil
}

func (f *fakeAssessmentsRepo) ListFamilyAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error) {
	return f.assessments[userID], nil
}

func (f *fakeAssessmentsRepo) DeleteFamilyAssessments(ctx context.Context, userID string) error {
	delete(f.assessments, userID)
	return nil
}

func (f *fakeAssessmentsRepo) SavePrediction(ctx context.Context, prediction *domain.HealthRiskPrediction) (string, error) {
	f.predictions = append(f.predictions, prediction)
	return fmt.Sprintf("prediction-%d", len(f.predictions)), nil
}

func (f *fakeAssessmentsRepo) ListPredictions(ctx context.Context, userID string, diseaseType domain.DiseaseType, limit int) ([]*domain.HealthRiskPrediction, error) {
	var result []*domain.HealthRiskPrediction
	for _, p := range f.predictions {
		if p.UserID != userID {
			continue
		}
		if diseaseType != "" && p.DiseaseType != diseaseType {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (f *fakeAssessmentsRepo) SavePatterns(ctx context.Context, userID string, patterns []*domain.HealthDeteriorationPattern) error {
	f.patterns = append(f.patterns, patterns...)
	return nil
}

func (f *fakeAssessmentsRepo) ListPatterns(ctx context.Context, userID string, limit int) ([]*domain.HealthDeteriorationPattern, error) {
	return f.patterns, nil
}

func newFamilyServiceForTest(kv store.KV) (service.FamilyService, *fakeMembersRepo, *fakeConditionsRepo, *fakeAssessmentsRepo) {
	membersRepo := newFakeMembersRepo()
	conditionsRepo := newFakeConditionsRepo()
	assessmentsRepo := newFakeAssessmentsRepo()
	svc := service.NewFamilyService(membersRepo, conditionsRepo, assessmentsRepo, kv, zap.NewNop())
	return svc, membersRepo, conditionsRepo, assessmentsRepo
}

func intPtr(v int) *int { return &v }

// ============================================
// 测试用例
// ============================================

func TestCreateMember_TriggersRecalculation(t *testing.T) {
	svc, _, conditionsRepo, assessmentsRepo := newFamilyServiceForTest(nil)

	require.NoError(t, conditionsRepo.UpsertCondition(context.Background(), &domain.GeneticCondition{
		ConditionID:  "gc-1",
		Name:         "Hypertension",
		Category:     "cardiovascular",
		IsHereditary: true,
	}))

	memberID, err := svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "mother",
		Generation:   -1,
		IsAlive:      true,
		Conditions: []domain.FamilyCondition{
			{Name: "Hypertension"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, memberID)

	// 成员创建后评估已整体重算
	require.Equal(t, 1, assessmentsRepo.replaceCalls)
	assessments := assessmentsRepo.assessments["user-1"]
	require.Len(t, assessments, 1)
	require.Equal(t, "Hypertension", assessments[0].ConditionName)
	require.Equal(t, 1, assessments[0].AffectedRelatives)
	require.Greater(t, assessments[0].FamilyRiskScore, 0.0)
}

func TestDeleteMember_RecalculatesToEmpty(t *testing.T) {
	svc, _, _, assessmentsRepo := newFamilyServiceForTest(nil)

	memberID, err := svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "father",
		Generation:   -1,
		IsAlive:      true,
		Conditions: []domain.FamilyCondition{
			{Name: "Type 2 Diabetes"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, assessmentsRepo.assessments["user-1"])

	require.NoError(t, svc.DeleteMember(context.Background(), "user-1", memberID))

	// 唯一患病成员删除后评估清空
	require.Empty(t, assessmentsRepo.assessments["user-1"])
}

func TestGetFamilyTree_CachesResult(t *testing.T) {
	kv := newFakeKV()
	svc, membersRepo, _, _ := newFamilyServiceForTest(kv)

	_, err := svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "mother",
		Generation:   -1,
		IsAlive:      true,
	})
	require.NoError(t, err)

	listCallsBefore := membersRepo.listCalls
	tree, err := svc.GetFamilyTree(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, "mother", tree[0].Relationship)

	// 第二次读取走缓存，不再查库
	tree2, err := svc.GetFamilyTree(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tree2, 1)
	require.Equal(t, listCallsBefore+1, membersRepo.listCalls)
}

func TestGetFamilyTree_CorruptCacheRebuilds(t *testing.T) {
	kv := newFakeKV()
	svc, _, _, _ := newFamilyServiceForTest(kv)

	_, err := svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "brother",
		Generation:   0,
		IsAlive:      true,
	})
	require.NoError(t, err)

	kv.put("family:tree:user-1", "{not valid json")

	tree, err := svc.GetFamilyTree(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tree, 1)

	// 重建后的缓存内容可解析
	raw, err := kv.Get(context.Background(), "family:tree:user-1")
	require.NoError(t, err)
	var cached []*analytics.FamilyTreeNode
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	require.Len(t, cached, 1)
}

func TestMutation_InvalidatesTreeCache(t *testing.T) {
	kv := newFakeKV()
	svc, _, _, _ := newFamilyServiceForTest(kv)

	_, err := svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "mother",
		Generation:   -1,
		IsAlive:      true,
	})
	require.NoError(t, err)

	tree, err := svc.GetFamilyTree(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tree, 1)

	_, err = svc.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "father",
		Generation:   -1,
		IsAlive:      true,
	})
	require.NoError(t, err)

	// 缓存已失效，新成员出现在树里
	tree, err = svc.GetFamilyTree(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tree, 2)
}

func TestGetRiskAssessments_LazyRecalculation(t *testing.T) {
	svc, membersRepo, _, assessmentsRepo := newFamilyServiceForTest(nil)

	// 绕过 Service 直接写库，模拟从未触发过重算的存量数据
	_, err := membersRepo.CreateMember(context.Background(), "user-1", &domain.FamilyMember{
		Relationship: "sister",
		Generation:   0,
		IsAlive:      true,
		BirthYear:    intPtr(1980),
		Conditions: []domain.FamilyCondition{
			{Name: "Asthma", DiagnosedYear: intPtr(1995)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0, assessmentsRepo.replaceCalls)

	assessments, err := svc.GetRiskAssessments(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	require.Equal(t, "Asthma", assessments[0].ConditionName)
	require.Equal(t, 1, assessmentsRepo.replaceCalls)
}

func TestRecalculateAssessments_RequiresUserID(t *testing.T) {
	svc, _, _, _ := newFamilyServiceForTest(nil)

	_, err := svc.RecalculateAssessments(context.Background(), "")
	require.Error(t, err)
}
