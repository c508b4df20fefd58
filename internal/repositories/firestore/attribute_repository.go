package firestore

import (
	"context"
	"errors"
	"strconv"

	"cloud.google.com/go/firestore"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
)

const (
	attributeGroupsCollection = "attributeGroups"
	attributesCollection      = "attributes"
)

type attributeGroupDocument struct {
	ParentID int64  `firestore:"parentId"`
	Key      string `firestore:"key"`
	Name     string `firestore:"name"`
}

type attributeDocument struct {
	GroupID int64  `firestore:"groupId"`
	Key     string `firestore:"key"`
	Name    string `firestore:"name"`
	Unit    string `firestore:"unit,omitempty"`
}

// AttributeGroupRepository persists the flat attribute-group rows within Firestore.
type AttributeGroupRepository struct {
	base *pfirestore.BaseRepository[attributeGroupDocument]
}

// NewAttributeGroupRepository constructs a Firestore-backed attribute-group repository.
func NewAttributeGroupRepository(provider *pfirestore.Provider) (*AttributeGroupRepository, error) {
	if provider == nil {
		return nil, errors.New("attribute group repository requires firestore provider")
	}
	return &AttributeGroupRepository{
		base: pfirestore.NewBaseRepository[attributeGroupDocument](provider, attributeGroupsCollection, nil, nil),
	}, nil
}

// Get retrieves a group row by its numeric id.
func (r *AttributeGroupRepository) Get(ctx context.Context, id uint64) (domain.AttributeGroup, error) {
	if r == nil || r.base == nil {
		return domain.AttributeGroup{}, errors.New("attribute group repository not initialised")
	}
	doc, err := r.base.Get(ctx, strconv.FormatUint(id, 10))
	if err != nil {
		return domain.AttributeGroup{}, err
	}
	return attributeGroupFromDocument(doc.ID, doc.Data), nil
}

// ListAll returns every group row.
func (r *AttributeGroupRepository) ListAll(ctx context.Context) ([]domain.AttributeGroup, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("attribute group repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AttributeGroup, 0, len(docs))
	for _, doc := range docs {
		out = append(out, attributeGroupFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// Upsert writes the group row keyed by its numeric id.
func (r *AttributeGroupRepository) Upsert(ctx context.Context, group domain.AttributeGroup) (domain.AttributeGroup, error) {
	if r == nil || r.base == nil {
		return domain.AttributeGroup{}, errors.New("attribute group repository not initialised")
	}
	if group.ID == 0 {
		return domain.AttributeGroup{}, errors.New("attribute group repository: id is required")
	}
	doc := attributeGroupDocument{
		ParentID: int64(group.ParentID),
		Key:      group.Key,
		Name:     group.Name,
	}
	if _, err := r.base.Set(ctx, strconv.FormatUint(group.ID, 10), doc); err != nil {
		return domain.AttributeGroup{}, err
	}
	return group, nil
}

// Delete removes the group row.
func (r *AttributeGroupRepository) Delete(ctx context.Context, id uint64) error {
	if r == nil || r.base == nil {
		return errors.New("attribute group repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, strconv.FormatUint(id, 10))
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("attributeGroups.delete", err)
	}
	return nil
}

func attributeGroupFromDocument(docID string, doc attributeGroupDocument) domain.AttributeGroup {
	id, _ := strconv.ParseUint(docID, 10, 64)
	var parentID uint64
	if doc.ParentID > 0 {
		parentID = uint64(doc.ParentID)
	}
	return domain.AttributeGroup{
		ID:       id,
		ParentID: parentID,
		Key:      doc.Key,
		Name:     doc.Name,
	}
}

// AttributeRepository persists attribute rows within Firestore.
type AttributeRepository struct {
	base *pfirestore.BaseRepository[attributeDocument]
}

// NewAttributeRepository constructs a Firestore-backed attribute repository.
func NewAttributeRepository(provider *pfirestore.Provider) (*AttributeRepository, error) {
	if provider == nil {
		return nil, errors.New("attribute repository requires firestore provider")
	}
	return &AttributeRepository{
		base: pfirestore.NewBaseRepository[attributeDocument](provider, attributesCollection, nil, nil),
	}, nil
}

// ListAll returns every attribute row.
func (r *AttributeRepository) ListAll(ctx context.Context) ([]domain.Attribute, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("attribute repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Attribute, 0, len(docs))
	for _, doc := range docs {
		out = append(out, attributeFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// ListByGroup returns the attributes owned by one group.
func (r *AttributeRepository) ListByGroup(ctx context.Context, groupID uint64) ([]domain.Attribute, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("attribute repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("groupId", "==", int64(groupID))
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Attribute, 0, len(docs))
	for _, doc := range docs {
		out = append(out, attributeFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// Upsert writes the attribute row keyed by its numeric id.
func (r *AttributeRepository) Upsert(ctx context.Context, attribute domain.Attribute) (domain.Attribute, error) {
	if r == nil || r.base == nil {
		return domain.Attribute{}, errors.New("attribute repository not initialised")
	}
	if attribute.ID == 0 {
		return domain.Attribute{}, errors.New("attribute repository: id is required")
	}
	doc := attributeDocument{
		GroupID: int64(attribute.GroupID),
		Key:     attribute.Key,
		Name:    attribute.Name,
		Unit:    attribute.Unit,
	}
	if _, err := r.base.Set(ctx, strconv.FormatUint(attribute.ID, 10), doc); err != nil {
		return domain.Attribute{}, err
	}
	return attribute, nil
}

// Delete removes the attribute row.
func (r *AttributeRepository) Delete(ctx context.Context, id uint64) error {
	if r == nil || r.base == nil {
		return errors.New("attribute repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, strconv.FormatUint(id, 10))
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("attributes.delete", err)
	}
	return nil
}

func attributeFromDocument(docID string, doc attributeDocument) domain.Attribute {
	id, _ := strconv.ParseUint(docID, 10, 64)
	var groupID uint64
	if doc.GroupID > 0 {
		groupID = uint64(doc.GroupID)
	}
	return domain.Attribute{
		ID:      id,
		GroupID: groupID,
		Key:     doc.Key,
		Name:    doc.Name,
		Unit:    doc.Unit,
	}
}
