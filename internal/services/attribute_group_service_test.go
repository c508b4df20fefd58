package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

type fakeAttributeGroupRepository struct {
	mu     sync.Mutex
	groups map[uint64]domain.AttributeGroup
}

func (f *fakeAttributeGroupRepository) Get(_ context.Context, id uint64) (domain.AttributeGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[id]
	if !ok {
		return domain.AttributeGroup{}, fakeRepositoryError{notFound: true}
	}
	return group, nil
}

func (f *fakeAttributeGroupRepository) ListAll(_ context.Context) ([]domain.AttributeGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AttributeGroup, 0, len(f.groups))
	for _, group := range f.groups {
		out = append(out, group)
	}
	return out, nil
}

func (f *fakeAttributeGroupRepository) Upsert(_ context.Context, group domain.AttributeGroup) (domain.AttributeGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups == nil {
		f.groups = map[uint64]domain.AttributeGroup{}
	}
	f.groups[group.ID] = group
	return group, nil
}

func (f *fakeAttributeGroupRepository) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups, id)
	return nil
}

type fakeAttributeRepository struct {
	attributes map[uint64]domain.Attribute
}

func (f *fakeAttributeRepository) ListAll(_ context.Context) ([]domain.Attribute, error) {
	out := make([]domain.Attribute, 0, len(f.attributes))
	for _, attribute := range f.attributes {
		out = append(out, attribute)
	}
	return out, nil
}

func (f *fakeAttributeRepository) ListByGroup(_ context.Context, groupID uint64) ([]domain.Attribute, error) {
	var out []domain.Attribute
	for _, attribute := range f.attributes {
		if attribute.GroupID == groupID {
			out = append(out, attribute)
		}
	}
	return out, nil
}

func (f *fakeAttributeRepository) Upsert(_ context.Context, attribute domain.Attribute) (domain.Attribute, error) {
	if f.attributes == nil {
		f.attributes = map[uint64]domain.Attribute{}
	}
	f.attributes[attribute.ID] = attribute
	return attribute, nil
}

func (f *fakeAttributeRepository) Delete(_ context.Context, id uint64) error {
	delete(f.attributes, id)
	return nil
}

func newTestAttributeGroupService(t *testing.T, groups map[uint64]domain.AttributeGroup, attributes map[uint64]domain.Attribute) AttributeGroupService {
	t.Helper()
	var maxID int64
	for id := range groups {
		if int64(id) > maxID {
			maxID = int64(id)
		}
	}
	svc, err := NewAttributeGroupService(AttributeGroupServiceDeps{
		Groups:     &fakeAttributeGroupRepository{groups: groups},
		Attributes: &fakeAttributeRepository{attributes: attributes},
		Counters:   &fakeCounterRepository{next: maxID},
		Events:     &fakeEventPublisher{},
	})
	if err != nil {
		t.Fatalf("NewAttributeGroupService error: %v", err)
	}
	return svc
}

func testAttributeGroups() map[uint64]domain.AttributeGroup {
	return map[uint64]domain.AttributeGroup{
		1: {ID: 1, Key: "physical", Name: "Physical"},
		2: {ID: 2, ParentID: 1, Key: "dimensions", Name: "Dimensions"},
		3: {ID: 3, ParentID: 1, Key: "weight", Name: "Weight"},
	}
}

func TestAttributeGroupService_GetTree(t *testing.T) {
	attributes := map[uint64]domain.Attribute{
		10: {ID: 10, GroupID: 2, Key: "width", Name: "Width", Unit: "mm"},
		11: {ID: 11, GroupID: 404, Key: "lost", Name: "Lost"},
	}
	svc := newTestAttributeGroupService(t, testAttributeGroups(), attributes)

	tree, err := svc.GetTree(context.Background(), true)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if tree.Len() != 3 || len(tree.Roots()) != 1 {
		t.Fatalf("Len = %d roots = %d", tree.Len(), len(tree.Roots()))
	}

	index, ok := tree.ByKey("dimensions")
	if !ok {
		t.Fatal("ByKey(dimensions) missing")
	}
	node := tree.Node(index)
	if node.Parent == NoParent {
		t.Fatal("dimensions should have a parent")
	}
	if len(node.Attributes) != 1 || node.Attributes[0].Key != "width" {
		t.Fatalf("attributes = %+v", node.Attributes)
	}

	// Attribute 11's group does not resolve and is dropped.
	for i := 0; i < tree.Len(); i++ {
		for _, attribute := range tree.Node(i).Attributes {
			if attribute.ID == 11 {
				t.Fatal("attribute 11 should have been dropped")
			}
		}
	}
}

func TestAttributeGroupService_CacheInvalidation(t *testing.T) {
	svc := newTestAttributeGroupService(t, testAttributeGroups(), nil)
	ctx := context.Background()

	before, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}

	created, err := svc.CreateGroup(ctx, UpsertAttributeGroupCommand{
		Group: domain.AttributeGroup{ParentID: 1, Key: "volume", Name: "Volume"},
	})
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	after, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if after == before {
		t.Fatal("tree not rebuilt after create")
	}
	if _, ok := after.ByID(created.ID); !ok {
		t.Fatal("new group missing from rebuilt tree")
	}
}

func TestAttributeGroupService_CycleRejection(t *testing.T) {
	svc := newTestAttributeGroupService(t, testAttributeGroups(), nil)
	ctx := context.Background()

	circular, err := svc.HasCircularReference(ctx, 1, 2)
	if err != nil {
		t.Fatalf("HasCircularReference error: %v", err)
	}
	if !circular {
		t.Fatal("moving a root under its child should be circular")
	}

	if _, err := svc.SetParent(ctx, 1, 3); !errors.Is(err, ErrAttributeGroupCircularReference) {
		t.Fatalf("error = %v, want ErrAttributeGroupCircularReference", err)
	}

	moved, err := svc.SetParent(ctx, 3, 2)
	if err != nil {
		t.Fatalf("SetParent error: %v", err)
	}
	if moved.ParentID != 2 {
		t.Fatalf("ParentID = %d, want 2", moved.ParentID)
	}
}
