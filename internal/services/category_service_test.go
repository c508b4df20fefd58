package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

type fakeCategoryRepository struct {
	mu         sync.Mutex
	categories map[uint64]domain.Category
	getErr     error
	listCalls  int
}

func (f *fakeCategoryRepository) Get(_ context.Context, id uint64) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Category{}, f.getErr
	}
	category, ok := f.categories[id]
	if !ok {
		return domain.Category{}, fakeRepositoryError{notFound: true}
	}
	return category, nil
}

func (f *fakeCategoryRepository) ListAll(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]domain.Category, 0, len(f.categories))
	for _, category := range f.categories {
		out = append(out, category)
	}
	return out, nil
}

func (f *fakeCategoryRepository) Upsert(_ context.Context, category domain.Category) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categories == nil {
		f.categories = map[uint64]domain.Category{}
	}
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeCategoryRepository) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.categories, id)
	return nil
}

type fakeCounterRepository struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeCounterRepository) Next(_ context.Context, _ string, step int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next += step
	return f.next, nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []CatalogEvent
	err    error
}

func (f *fakeEventPublisher) PublishCatalogEvent(_ context.Context, event CatalogEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, event)
	return "msg_1", nil
}

func newTestCategoryService(t *testing.T, categories map[uint64]domain.Category, products map[uint64]domain.Product) (CategoryService, *fakeCategoryRepository, *fakeEventPublisher) {
	t.Helper()
	repo := &fakeCategoryRepository{categories: categories}
	events := &fakeEventPublisher{}
	var maxID int64
	for id := range categories {
		if int64(id) > maxID {
			maxID = int64(id)
		}
	}
	svc, err := NewCategoryService(CategoryServiceDeps{
		Categories: repo,
		Products:   &fakeProductRepository{products: products},
		Counters:   &fakeCounterRepository{next: maxID},
		Events:     events,
	})
	if err != nil {
		t.Fatalf("NewCategoryService error: %v", err)
	}
	return svc, repo, events
}

func testCategories() map[uint64]domain.Category {
	return map[uint64]domain.Category{
		1: {ID: 1, Name: "Stationery", Slug: "stationery"},
		2: {ID: 2, ParentID: 1, Name: "Pens", Slug: "pens"},
		3: {ID: 3, ParentID: 1, Name: "Paper", Slug: "paper"},
		4: {ID: 4, ParentID: 2, Name: "Fountain Pens", Slug: "fountain"},
	}
}

func TestCategoryService_GetTreeRoundTrip(t *testing.T) {
	svc, _, _ := newTestCategoryService(t, testCategories(), nil)

	tree, err := svc.GetTree(context.Background(), false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if tree.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tree.Len())
	}
	if len(tree.Roots()) != 1 {
		t.Fatalf("roots = %d, want 1", len(tree.Roots()))
	}

	root := tree.Node(tree.Roots()[0])
	if root.Category.ID != 1 {
		t.Fatalf("root id = %d, want 1", root.Category.ID)
	}
	if root.Parent != NoParent {
		t.Fatalf("root parent = %d, want NoParent", root.Parent)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}

	// Every row is reachable and parent links invert child links.
	for i := 0; i < tree.Len(); i++ {
		node := tree.Node(i)
		index, ok := tree.ByID(node.Category.ID)
		if !ok || index != i {
			t.Fatalf("ByID(%d) = %d,%v, want %d", node.Category.ID, index, ok, i)
		}
		for _, child := range node.Children {
			if tree.Node(child).Parent != i {
				t.Fatalf("child %d does not point back to %d", child, i)
			}
		}
	}

	index, ok := tree.BySlug("fountain")
	if !ok {
		t.Fatal("BySlug(fountain) missing")
	}
	if got := tree.Node(index).FullPathSlug; got != "stationery/pens/fountain" {
		t.Fatalf("FullPathSlug = %q, want stationery/pens/fountain", got)
	}
}

func TestCategoryService_DanglingParentBecomesRoot(t *testing.T) {
	categories := testCategories()
	categories[9] = domain.Category{ID: 9, ParentID: 77, Name: "Orphan", Slug: "orphan"}
	svc, _, _ := newTestCategoryService(t, categories, nil)

	tree, err := svc.GetTree(context.Background(), false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if len(tree.Roots()) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree.Roots()))
	}
	index, ok := tree.ByID(9)
	if !ok {
		t.Fatal("ByID(9) missing")
	}
	if tree.Node(index).Parent != NoParent {
		t.Fatal("orphan should have no parent")
	}
	if got := tree.Node(index).FullPathSlug; got != "orphan" {
		t.Fatalf("FullPathSlug = %q, want orphan", got)
	}
}

func TestCategoryService_BlankNameOmitsPathSegment(t *testing.T) {
	categories := map[uint64]domain.Category{
		1: {ID: 1, Name: "Top", Slug: "top"},
		2: {ID: 2, ParentID: 1, Name: "  ", Slug: "middle"},
		3: {ID: 3, ParentID: 2, Name: "Leaf", Slug: "leaf"},
	}
	svc, _, _ := newTestCategoryService(t, categories, nil)

	tree, err := svc.GetTree(context.Background(), false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	index, _ := tree.ByID(3)
	// The unnamed middle category contributes no segment.
	if got := tree.Node(index).FullPathSlug; got != "top/leaf" {
		t.Fatalf("FullPathSlug = %q, want top/leaf", got)
	}
}

func TestCategoryService_GetTreeWithProducts(t *testing.T) {
	products := map[uint64]domain.Product{
		10: {ID: 10, Name: "Ballpoint", CategoryIDs: []uint64{2}},
		11: {ID: 11, Name: "Ghost", CategoryIDs: []uint64{404}},
	}
	svc, _, _ := newTestCategoryService(t, testCategories(), products)

	tree, err := svc.GetTree(context.Background(), true)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	index, _ := tree.ByID(2)
	if got := len(tree.Node(index).Products); got != 1 {
		t.Fatalf("pens products = %d, want 1", got)
	}
	// Products referencing unknown categories are dropped without error.
	for i := 0; i < tree.Len(); i++ {
		for _, product := range tree.Node(i).Products {
			if product.ID == 11 {
				t.Fatal("product 11 should have been dropped")
			}
		}
	}
}

func TestCategoryService_TreeCaching(t *testing.T) {
	svc, repo, _ := newTestCategoryService(t, testCategories(), nil)
	ctx := context.Background()

	first, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	second, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if first != second {
		t.Fatal("second read should return the cached snapshot")
	}
	if repo.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1", repo.listCalls)
	}

	// A products read cannot be served by a bare snapshot.
	withProducts, err := svc.GetTree(ctx, true)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if withProducts == first {
		t.Fatal("products read should have rebuilt")
	}
	// But a bare read is served by the products snapshot.
	bare, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if bare != withProducts {
		t.Fatal("bare read should reuse the products snapshot")
	}
}

func TestCategoryService_MutationsInvalidateCache(t *testing.T) {
	svc, _, events := newTestCategoryService(t, testCategories(), nil)
	ctx := context.Background()

	before, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}

	created, err := svc.CreateCategory(ctx, UpsertCategoryCommand{
		Category: domain.Category{ParentID: 1, Name: "Ink", Slug: "ink"},
		ActorID:  "admin_1",
	})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created category has no id")
	}

	after, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if after == before {
		t.Fatal("tree not rebuilt after create")
	}
	if _, ok := after.ByID(created.ID); !ok {
		t.Fatal("new category missing from rebuilt tree")
	}

	if len(events.events) != 1 || events.events[0].Action != CatalogEventActionCreated {
		t.Fatalf("events = %+v", events.events)
	}

	if err := svc.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCategory error: %v", err)
	}
	final, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	if _, ok := final.ByID(created.ID); ok {
		t.Fatal("deleted category still in tree")
	}
}

func TestCategoryService_HasCircularReference(t *testing.T) {
	svc, _, _ := newTestCategoryService(t, testCategories(), nil)
	ctx := context.Background()

	cases := []struct {
		name     string
		category uint64
		parent   uint64
		want     bool
	}{
		{name: "self", category: 1, parent: 1, want: true},
		{name: "direct child", category: 1, parent: 2, want: true},
		{name: "grandchild", category: 1, parent: 4, want: true},
		{name: "sibling", category: 2, parent: 3, want: false},
		{name: "down one level", category: 4, parent: 3, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.HasCircularReference(ctx, tc.category, tc.parent)
			if err != nil {
				t.Fatalf("HasCircularReference error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCategoryService_CircularWalkFailureBlocksMove(t *testing.T) {
	svc, repo, _ := newTestCategoryService(t, testCategories(), nil)
	repo.getErr = errors.New("backend down")

	got, err := svc.HasCircularReference(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("HasCircularReference error: %v", err)
	}
	if !got {
		t.Fatal("lookup failure should report a cycle to block the move")
	}
}

func TestCategoryService_SetParentRejectsCycle(t *testing.T) {
	svc, _, _ := newTestCategoryService(t, testCategories(), nil)
	ctx := context.Background()

	if _, err := svc.SetParent(ctx, 1, 4); !errors.Is(err, ErrCategoryCircularReference) {
		t.Fatalf("error = %v, want ErrCategoryCircularReference", err)
	}

	moved, err := svc.SetParent(ctx, 4, 3)
	if err != nil {
		t.Fatalf("SetParent error: %v", err)
	}
	if moved.ParentID != 3 {
		t.Fatalf("ParentID = %d, want 3", moved.ParentID)
	}

	tree, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree error: %v", err)
	}
	index, _ := tree.ByID(4)
	if got := tree.Node(index).FullPathSlug; got != "stationery/paper/fountain" {
		t.Fatalf("FullPathSlug = %q, want stationery/paper/fountain", got)
	}
}

func TestCategoryService_Validation(t *testing.T) {
	svc, _, _ := newTestCategoryService(t, testCategories(), nil)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, UpsertCategoryCommand{
		Category: domain.Category{Slug: "no-name"},
	}); !errors.Is(err, ErrCategoryValidation) {
		t.Fatalf("missing name: error = %v", err)
	}
	if _, err := svc.CreateCategory(ctx, UpsertCategoryCommand{
		Category: domain.Category{Name: "No Slug"},
	}); !errors.Is(err, ErrCategoryValidation) {
		t.Fatalf("missing slug: error = %v", err)
	}
	if _, err := svc.CreateCategory(ctx, UpsertCategoryCommand{
		Category: domain.Category{ParentID: 404, Name: "Lost", Slug: "lost"},
	}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("missing parent: error = %v", err)
	}
	if _, err := svc.GetCategory(ctx, 404); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("missing category: error = %v", err)
	}
}

func TestCategoryService_SanitizesDescription(t *testing.T) {
	svc, _, _ := newTestCategoryService(t, testCategories(), nil)

	created, err := svc.CreateCategory(context.Background(), UpsertCategoryCommand{
		Category: domain.Category{
			Name:        "Markers",
			Slug:        "markers",
			Description: `<p>Bold lines</p><script>alert("x")</script>`,
		},
	})
	if err != nil {
		t.Fatalf("CreateCategory error: %v", err)
	}
	if created.Description != "<p>Bold lines</p>" {
		t.Fatalf("Description = %q", created.Description)
	}
}
