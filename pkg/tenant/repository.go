package tenant

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// RepositoryHelper provides store-aware query building for MongoDB repositories.
// Embed this in repository structs to add store filtering capabilities.
type RepositoryHelper struct {
	// EnforceStore when true, returns an error if store context is missing
	EnforceStore bool
}

// NewRepositoryHelper creates a new RepositoryHelper
func NewRepositoryHelper(enforceStore bool) *RepositoryHelper {
	return &RepositoryHelper{
		EnforceStore: enforceStore,
	}
}

// WithStoreFilter adds store filtering to a MongoDB query filter.
// It extracts store context from the context and adds filter conditions.
func (h *RepositoryHelper) WithStoreFilter(ctx context.Context, filter bson.M) (bson.M, error) {
	tc, err := FromContext(ctx)
	if err != nil {
		if h.EnforceStore {
			return nil, err
		}
		return filter, nil
	}

	storeFilter := bson.M{}
	for k, v := range filter {
		storeFilter[k] = v
	}

	if tc.StoreID != "" {
		storeFilter["storeId"] = tc.StoreID
	}
	if tc.SupplierID != "" {
		storeFilter["supplierId"] = tc.SupplierID
	}
	if tc.ResellerID != "" {
		storeFilter["resellerId"] = tc.ResellerID
	}

	return storeFilter, nil
}

// WithStoreFilterOptional adds store filtering without requiring store context.
func (h *RepositoryHelper) WithStoreFilterOptional(ctx context.Context, filter bson.M) bson.M {
	tc := FromContextOptional(ctx)

	storeFilter := bson.M{}
	for k, v := range filter {
		storeFilter[k] = v
	}

	if tc.StoreID != "" {
		storeFilter["storeId"] = tc.StoreID
	}
	if tc.SupplierID != "" {
		storeFilter["supplierId"] = tc.SupplierID
	}
	if tc.ResellerID != "" {
		storeFilter["resellerId"] = tc.ResellerID
	}

	return storeFilter
}

// ValidateOwnership verifies that a resource belongs to the store in context.
// Use this after fetching a resource to ensure the caller has access.
func (h *RepositoryHelper) ValidateOwnership(ctx context.Context, resourceStoreID, resourceSupplierID string) error {
	tc, err := FromContext(ctx)
	if err != nil {
		if h.EnforceStore {
			return err
		}
		return nil
	}

	return tc.ValidateOwnership(resourceStoreID, resourceSupplierID)
}

// ExtractStoreFields extracts store fields from context for setting on new entities.
func (h *RepositoryHelper) ExtractStoreFields(ctx context.Context) (storeID, supplierID string) {
	tc := FromContextOptional(ctx)

	if tc.StoreID != "" {
		storeID = tc.StoreID
	} else {
		storeID = DefaultStoreID
	}

	supplierID = tc.SupplierID

	return
}

// StoreIndexes returns standard MongoDB index definitions for store fields.
func StoreIndexes() []bson.D {
	return []bson.D{
		{{Key: "storeId", Value: 1}},
		{{Key: "storeId", Value: 1}, {Key: "supplierId", Value: 1}},
	}
}
