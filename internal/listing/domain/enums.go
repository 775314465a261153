package domain

// Category is the fixed set of listing categories. The same values key the
// disposal knowledge base and the waste weight table.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFurniture   Category = "Furniture"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryAppliances  Category = "Appliances"
	CategoryToys        Category = "Toys"
	CategorySports      Category = "Sports"
	CategoryKitchen     Category = "Kitchen"
	CategoryGarden      Category = "Garden"
	CategoryOther       Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFurniture,
	CategoryClothing,
	CategoryBooks,
	CategoryAppliances,
	CategoryToys,
	CategorySports,
	CategoryKitchen,
	CategoryGarden,
	CategoryOther,
}

// IsValid reports whether c is one of the defined categories. Matching is exact.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Condition describes the physical state of an item.
type Condition string

const (
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

var Conditions = []Condition{ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

func (c Condition) IsValid() bool {
	switch c {
	case ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ItemType says whether a listing is a free giveaway or a barter offer.
type ItemType string

const (
	ItemTypeGiveAway ItemType = "give_away"
	ItemTypeBarter   ItemType = "barter"
)

var ItemTypes = []ItemType{ItemTypeGiveAway, ItemTypeBarter}

func (t ItemType) IsValid() bool {
	return t == ItemTypeGiveAway || t == ItemTypeBarter
}

// ContactMethod is how the lister wants to be reached.
type ContactMethod string

const (
	ContactEmail   ContactMethod = "email"
	ContactPhone   ContactMethod = "phone"
	ContactMessage ContactMethod = "message"
)

var ContactMethods = []ContactMethod{ContactEmail, ContactPhone, ContactMessage}

func (m ContactMethod) IsValid() bool {
	switch m {
	case ContactEmail, ContactPhone, ContactMessage:
		return true
	}
	return false
}

// ListingStatus tracks whether an item is still on offer.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusRehomed   ListingStatus = "rehomed"
)

// statusAliases maps status names used by older clients.
var statusAliases = map[string]ListingStatus{
	"completed": StatusRehomed,
}

func (s ListingStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusRehomed
}

// ParseStatus accepts a canonical status or a legacy alias.
func ParseStatus(raw string) (ListingStatus, bool) {
	if s := ListingStatus(raw); s.IsValid() {
		return s, true
	}
	s, ok := statusAliases[raw]
	return s, ok
}

// CanTransitionTo reports whether a listing in status s may move to next.
// Rehomed is terminal; setting the current status again is a no-op and allowed.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	return s == StatusAvailable && next == StatusRehomed
}
