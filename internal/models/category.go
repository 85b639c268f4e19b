package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeBoth    CategoryType = "both"
)

// Category represents a transaction category. Built-in categories have no
// owner and are shared by every user.
type Category struct {
	Base
	UserID    *string      `gorm:"size:64;index" json:"user_id"`
	Name      string       `gorm:"size:50;not null" json:"name"`
	Icon      string       `gorm:"size:32" json:"icon"`
	Color     string       `gorm:"size:7" json:"color"`
	Type      CategoryType `gorm:"size:16;not null" json:"type"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`
}

// Applies reports whether the category can be picked for a transaction of the given type.
func (c Category) Applies(t TransactionType) bool {
	return c.Type == CategoryTypeBoth || string(c.Type) == string(t)
}

// OwnedBy reports whether userID owns the category.
func (c Category) OwnedBy(userID string) bool {
	return c.UserID != nil && *c.UserID == userID
}

// DefaultCategories returns the built-in category set. Ids are stable across
// installations so transactions can reference them before the first sync.
func DefaultCategories() []Category {
	builtin := func(id, name, icon, color string, t CategoryType) Category {
		return Category{Base: Base{ID: id}, Name: name, Icon: icon, Color: color, Type: t, IsDefault: true}
	}
	return []Category{
		builtin("1", "Groceries", "shopping-cart", "#FF9F0A", CategoryTypeExpense),
		builtin("2", "Transport", "car", "#0A84FF", CategoryTypeExpense),
		builtin("3", "Housing", "home", "#BF5AF2", CategoryTypeExpense),
		builtin("4", "Cafes", "coffee", "#FF453A", CategoryTypeExpense),
		builtin("7", "Health", "heart", "#FF375F", CategoryTypeExpense),
		builtin("8", "Clothing", "shopping-bag", "#5E5CE6", CategoryTypeExpense),
		builtin("9", "Phone & Internet", "smartphone", "#64D2FF", CategoryTypeExpense),
		builtin("10", "Sports", "activity", "#30D158", CategoryTypeExpense),
		builtin("11", "Car", "tool", "#AC8E68", CategoryTypeExpense),
		builtin("12", "Pets", "github", "#E0A800", CategoryTypeExpense),
		builtin("13", "Education", "book", "#FF9500", CategoryTypeExpense),
		builtin("14", "Gifts", "gift", "#FF2D55", CategoryTypeExpense),
		builtin("15", "Travel", "map", "#40C8E0", CategoryTypeExpense),
		builtin("16", "Beauty", "sun", "#D188CF", CategoryTypeExpense),
		builtin("17", "Electronics", "monitor", "#8E8E93", CategoryTypeExpense),

		builtin("5", "Salary", "briefcase", "#32D74B", CategoryTypeIncome),
		builtin("6", "Freelance", "laptop", "#64D2FF", CategoryTypeIncome),
		builtin("18", "Investments", "trending-up", "#30B0C7", CategoryTypeIncome),
		builtin("19", "Gifts", "gift", "#FFD60A", CategoryTypeIncome),
		builtin("20", "Cashback", "percent", "#FF9F0A", CategoryTypeIncome),
	}
}
