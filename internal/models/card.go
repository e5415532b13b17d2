package models

// CardRef is a user's reference to a catalog card, as stored in a collection or deck.
type CardRef struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name,omitempty" validate:"max=200"`
	Count int    `json:"count,omitempty" validate:"gte=0,lte=99"`
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// Card is a catalog row. The catalog is seeded by a separate job and is
// read-only from this service.
type Card struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name     string `json:"name" gorm:"type:varchar(200)"`
	ImageURL string `json:"image_url" gorm:"column:image_url"`
	SetName  string `json:"set_name" gorm:"column:set_name;index"`
	CardType string `json:"card_type" gorm:"column:card_type;index"`
	Rarity   string `json:"rarity"`
}

// EnrichedCard is a CardRef overlaid with catalog display fields.
type EnrichedCard struct {
	CardRef
	ImageURL string `json:"image_url"`
	SetName  string `json:"set_name"`
	CardType string `json:"card_type"`
}

// Enrich overlays the catalog card on ref. A zero Card yields empty display fields.
func Enrich(ref CardRef, card Card) EnrichedCard {
	if ref.Name == "" {
		ref.Name = card.Name
	}
	return EnrichedCard{
		CardRef:  ref,
		ImageURL: card.ImageURL,
		SetName:  card.SetName,
		CardType: card.CardType,
	}
}
