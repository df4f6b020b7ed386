package model

// Category is a sub-classification within a Work (badges, acrylic stands, ...).
// Categories have no independent existence: they live embedded in their parent
// Work's document.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order *int   `json:"order,omitempty"`
}

// Work groups items under a series or franchise.
type Work struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
	Order      *int       `json:"order,omitempty"`
}

// DefaultCategoryNames are seeded into every newly created work.
var DefaultCategoryNames = []string{"徽章", "立牌", "紙片"}

// Key returns the document key.
func (w Work) Key() string { return w.ID }

// Category returns the embedded category with the given id, or nil.
func (w *Work) Category(categoryID string) *Category {
	for i := range w.Categories {
		if w.Categories[i].ID == categoryID {
			return &w.Categories[i]
		}
	}
	return nil
}
