package planner

import "github.com/google/uuid"

// normalizeCollections makes a provider response safe for the UI layer:
// every collection and recipe gets a non-empty identifier, recipe ids are
// unique across the whole response (the provider does not guarantee this),
// and each recipe is stamped with its owning collection's title. Returns the
// flat aggregate of all recipes.
func normalizeCollections(collections []Collection) []Recipe {
	seen := make(map[string]struct{})
	var all []Recipe

	for ci := range collections {
		c := &collections[ci]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Recipes == nil {
			c.Recipes = []Recipe{}
		}
		for ri := range c.Recipes {
			r := &c.Recipes[ri]
			if _, dup := seen[r.ID]; r.ID == "" || dup {
				r.ID = uuid.NewString()
			}
			seen[r.ID] = struct{}{}
			r.Group = c.Title
			all = append(all, *r)
		}
	}
	return all
}
