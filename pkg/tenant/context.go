package tenant

import (
	"context"
	"errors"
)

// Context keys for marketplace scoping
type contextKey string

const (
	storeIDKey    contextKey = "storeId"
	supplierIDKey contextKey = "supplierId"
	resellerIDKey contextKey = "resellerId"
)

// Errors for store context operations
var (
	ErrMissingStoreContext = errors.New("store context is required")
	ErrUnauthorizedAccess  = errors.New("unauthorized access to store resource")
	ErrMissingStoreID      = errors.New("storeId is required")
)

// Context holds the marketplace identifiers used to scope queries and operations.
type Context struct {
	// StoreID is the marketplace storefront identifier
	StoreID string `json:"storeId"`

	// SupplierID is the supplier whose origins fulfil orders
	SupplierID string `json:"supplierId"`

	// ResellerID is the reseller selling through the store
	ResellerID string `json:"resellerId"`
}

// FromContext extracts the store Context from context.Context.
// Returns an error if no store identifier is present.
func FromContext(ctx context.Context) (*Context, error) {
	tc := &Context{}

	if v := ctx.Value(storeIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.StoreID = id
		}
	}
	if v := ctx.Value(supplierIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.SupplierID = id
		}
	}
	if v := ctx.Value(resellerIDKey); v != nil {
		if id, ok := v.(string); ok {
			tc.ResellerID = id
		}
	}

	if tc.StoreID == "" {
		return nil, ErrMissingStoreContext
	}

	return tc, nil
}

// FromContextOptional extracts the store Context, returning an empty
// context when none exists.
func FromContextOptional(ctx context.Context) *Context {
	tc, _ := FromContext(ctx)
	if tc == nil {
		return &Context{}
	}
	return tc
}

// ToContext adds store Context values to context.Context.
func ToContext(ctx context.Context, tc *Context) context.Context {
	if tc == nil {
		return ctx
	}

	if tc.StoreID != "" {
		ctx = context.WithValue(ctx, storeIDKey, tc.StoreID)
	}
	if tc.SupplierID != "" {
		ctx = context.WithValue(ctx, supplierIDKey, tc.SupplierID)
	}
	if tc.ResellerID != "" {
		ctx = context.WithValue(ctx, resellerIDKey, tc.ResellerID)
	}

	return ctx
}

// WithStoreID returns a new context with the store ID set
func WithStoreID(ctx context.Context, storeID string) context.Context {
	return context.WithValue(ctx, storeIDKey, storeID)
}

// WithSupplierID returns a new context with the supplier ID set
func WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return context.WithValue(ctx, supplierIDKey, supplierID)
}

// WithResellerID returns a new context with the reseller ID set
func WithResellerID(ctx context.Context, resellerID string) context.Context {
	return context.WithValue(ctx, resellerIDKey, resellerID)
}

// GetStoreID extracts store ID from context
func GetStoreID(ctx context.Context) string {
	if v := ctx.Value(storeIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetSupplierID extracts supplier ID from context
func GetSupplierID(ctx context.Context) string {
	if v := ctx.Value(supplierIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetResellerID extracts reseller ID from context
func GetResellerID(ctx context.Context) string {
	if v := ctx.Value(resellerIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// IsEmpty returns true if the context has no identifiers set
func (tc *Context) IsEmpty() bool {
	return tc.StoreID == "" && tc.SupplierID == "" && tc.ResellerID == ""
}

// HasSupplier returns true if a supplier ID is set
func (tc *Context) HasSupplier() bool {
	return tc.SupplierID != ""
}

// Validate checks that the required store identifier is present.
func (tc *Context) Validate() error {
	if tc.StoreID == "" {
		return ErrMissingStoreID
	}
	return nil
}

// ValidateOwnership verifies that a resource belongs to this store context.
// Used to prevent cross-store data access.
func (tc *Context) ValidateOwnership(resourceStoreID, resourceSupplierID string) error {
	if tc.StoreID != "" && resourceStoreID != "" && tc.StoreID != resourceStoreID {
		return ErrUnauthorizedAccess
	}

	if tc.SupplierID != "" && resourceSupplierID != "" && tc.SupplierID != resourceSupplierID {
		return ErrUnauthorizedAccess
	}

	return nil
}

// DefaultStoreID is used for existing data without store fields.
const DefaultStoreID = "DEFAULT_STORE"

// Default returns a default store context for backward compatibility
func Default() *Context {
	return &Context{
		StoreID: DefaultStoreID,
	}
}
