package input

import "github.com/tjfontaine/ghibli-studio/internal/domain"

// StyleOption is one entry of the style picker.
type StyleOption struct {
	ID          domain.Style
	Name        string
	Description string
}

var styleCatalog = []StyleOption{
	{ID: "classic-ghibli", Name: "Classic Ghibli", Description: "Traditional Studio Ghibli look"},
	{ID: "spirited-away", Name: "Spirited Away", Description: "Mystical bathhouse aesthetic"},
	{ID: "totoro", Name: "My Neighbor Totoro", Description: "Whimsical forest style"},
	{ID: "mononoke", Name: "Princess Mononoke"},
	{ID: "howl", Name: "Howl's Moving Castle"},
	{ID: "kiki", Name: "Kiki's Delivery Service"},
	{ID: "anime", Name: "Anime Style"},
	{ID: "cinematic", Name: "Cinematic"},
	{ID: "watercolor", Name: "Watercolor"},
	{ID: "sketch", Name: "Sketch"},
	{ID: "pastel", Name: "Pastel"},
	{ID: "vintage", Name: "Vintage"},
}

// Styles returns the style catalog in display order.
func Styles() []StyleOption {
	out := make([]StyleOption, len(styleCatalog))
	copy(out, styleCatalog)
	return out
}

// LookupStyle returns the catalog entry for id.
func LookupStyle(id domain.Style) (StyleOption, bool) {
	for _, opt := range styleCatalog {
		if opt.ID == id {
			return opt, true
		}
	}
	return StyleOption{}, false
}
