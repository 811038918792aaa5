package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to messages.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // missing or rejected bearer credential

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationDuplicate     = "VALIDATION_DUPLICATE"

	// ==================== RESOURCE_ ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceInUse    = "RESOURCE_IN_USE"

	// ==================== CATALOG_ ====================
	ProductNotFound        = "PRODUCT_NOT_FOUND"
	CategoryNotFound       = "CATEGORY_NOT_FOUND"
	SubcategoryNotFound    = "SUBCATEGORY_NOT_FOUND"
	AttributeNotFound      = "ATTRIBUTE_NOT_FOUND"
	AttributeGroupNotFound = "ATTRIBUTE_GROUP_NOT_FOUND"

	// ==================== INTERNAL_ ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalUnavailable   = "INTERNAL_STORE_UNAVAILABLE"
)

// Entity names used by NotFoundError and ReferentialIntegrityError.
const (
	EntityProduct        = "product"
	EntityCategory       = "category"
	EntitySubcategory    = "subcategory"
	EntityAttribute      = "attribute"
	EntityAttributeGroup = "attribute_group"
)

var notFoundCodes = map[string]string{
	EntityProduct:        ProductNotFound,
	EntityCategory:       CategoryNotFound,
	EntitySubcategory:    SubcategoryNotFound,
	EntityAttribute:      AttributeNotFound,
	EntityAttributeGroup: AttributeGroupNotFound,
}

// NotFoundCode returns the entity specific not-found code.
func NotFoundCode(entity string) string {
	if code, ok := notFoundCodes[entity]; ok {
		return code
	}
	return ResourceNotFound
}
