package domain

// DefaultProductName is used whenever neither the customer record nor the
// request names a product.
const DefaultProductName = "Minimal Boilerplate"
