// Package catalog holds the static product catalog and the fixed demo
// shopper profiles. Products carry prices in minor currency units; profiles
// carry opaque privacy-preserving identity hashes, never raw PII.
package catalog

// Product is a single catalog entry.
type Product struct {
	ID       string   `json:"product_id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    int64    `json:"price"` // minor currency units
	Sizes    []string `json:"sizes,omitempty"`
}

// HasSizes returns true if the product requires a size variant on add-to-cart.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// Profile is a demo shopper identity. The hash is a pre-computed salted
// digest; the profile ID doubles as the key for local fallback assessments.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Hash        string `json:"hash"`
	Description string `json:"description"`
}

var products = []Product{
	{ID: "PROD_T01", Name: "Urban Flex Tee", Category: "Clothing", Price: 1299, Sizes: []string{"XS", "S", "M", "L", "XL"}},
	{ID: "PROD_T02", Name: "Neo Denim Jacket", Category: "Clothing", Price: 4999, Sizes: []string{"S", "M", "L", "XL"}},
	{ID: "PROD_E01", Name: "Quantum Earbuds Pro", Category: "Electronics", Price: 12999},
	{ID: "PROD_E02", Name: "AuraWatch Ultra", Category: "Electronics", Price: 24999},
	{ID: "PROD_S01", Name: "StridePro Runners", Category: "Footwear", Price: 7499, Sizes: []string{"7", "8", "9", "10", "11"}},
	{ID: "PROD_S02", Name: "Cloud-9 Loafers", Category: "Footwear", Price: 5499, Sizes: []string{"7", "8", "9", "10", "11"}},
	{ID: "PROD_A01", Name: "Velocity Backpack", Category: "Accessories", Price: 2999},
	{ID: "PROD_B01", Name: "Deep Work Masterclass", Category: "Books", Price: 499},
}

var profiles = []Profile{
	{
		ID:          "low_risk",
		Name:        "Priya Sharma",
		Hash:        "a3f4e2d1c0b9a8f7e6d5c4b3a2f1e0d9c8b7a6f5e4d3c2b1a0f9e8d7c6b5a401",
		Description: "Normal shopper, rare returns",
	},
	{
		ID:          "medium_risk",
		Name:        "Rahul Verma",
		Hash:        "b4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2c3d402",
		Description: "Occasional returns, occasional issues",
	},
	{
		ID:          "high_risk",
		Name:        "Serial Fraudster",
		Hash:        "d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d603",
		Description: "Wardrobing pattern detected",
	},
}

// Products returns a copy of the full catalog.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ByCategory returns products in the given category, or the full catalog
// when category is empty or "All".
func ByCategory(category string) []Product {
	if category == "" || category == "All" {
		return Products()
	}
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ProductByID looks up a product. The second return is false when unknown.
func ProductByID(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Categories returns the distinct product categories in catalog order.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Profiles returns a copy of the demo shopper profiles.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ProfileByHash resolves a demo profile from its identity hash.
func ProfileByHash(hash string) (Profile, bool) {
	for _, p := range profiles {
		if p.Hash == hash {
			return p, true
		}
	}
	return Profile{}, false
}
