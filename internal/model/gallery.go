package model

import "fmt"

// GallerySpec is one variant within a gallery item's completion checklist.
// Specs live embedded in their parent GalleryItem's document.
type GallerySpec struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsOwned bool   `json:"isOwned"`
}

// GalleryItem is a collectible with variants to complete (e.g. a card set).
type GalleryItem struct {
	ID           string        `json:"id"`
	WorkID       string        `json:"workId"`
	Name         string        `json:"name"`
	OriginalName string        `json:"originalName,omitempty"`
	Specs        []GallerySpec `json:"specs"`

	// ImageID references a blob in the image store. Image holds the inline
	// base64 payload written by pre-v2 releases (see GoodsItem).
	ImageID string `json:"imageId,omitempty"`
	Image   string `json:"image,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	Order     *int  `json:"order,omitempty"`
}

// Key returns the document key.
func (g GalleryItem) Key() string { return g.ID }

// Completion returns owned and total variant counts. The percentage is always
// derived from the specs, never stored.
func (g *GalleryItem) Completion() (owned, total int) {
	for _, spec := range g.Specs {
		if spec.IsOwned {
			owned++
		}
	}
	return owned, len(g.Specs)
}

// NumberedSpecs generates count specs named "<prefix>1" through
// "<prefix><count>", none owned. IDs are assigned by newID.
func NumberedSpecs(prefix string, count int, newID func() string) []GallerySpec {
	specs := make([]GallerySpec, 0, count)
	for n := 1; n <= count; n++ {
		specs = append(specs, GallerySpec{
			ID:   newID(),
			Name: fmt.Sprintf("%s%d", prefix, n),
		})
	}
	return specs
}

// Validate checks field constraints before a gallery item is persisted.
func (g *GalleryItem) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("gallery item name is required")
	}
	if g.WorkID == "" {
		return fmt.Errorf("gallery item workId is required")
	}
	return nil
}
