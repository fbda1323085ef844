package constants

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

var categoryToWire = map[Category]string{
	CategoryWork:     "Travail",
	CategoryPersonal: "Personnel",
	CategoryShopping: "Achats",
	CategoryHealth:   "Santé",
	CategoryOther:    "Autre",
}

var categoryFromWire = map[string]Category{
	"Travail":   CategoryWork,
	"Personnel": CategoryPersonal,
	"Achats":    CategoryShopping,
	"Santé":     CategoryHealth,
	"Autre":     CategoryOther,
}

func (c Category) Valid() bool {
	_, ok := categoryToWire[c]
	return ok
}

// Wire returns the backend label; unknown categories map to "Autre".
func (c Category) Wire() string {
	if v, ok := categoryToWire[c]; ok {
		return v
	}
	return categoryToWire[CategoryOther]
}

func CategoryFromWire(label string) Category {
	if c, ok := categoryFromWire[label]; ok {
		return c
	}
	return CategoryOther
}
