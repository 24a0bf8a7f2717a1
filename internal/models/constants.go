package models

// CategoryOther is the fallback bucket for expenses recorded without a
// category.
const CategoryOther = "other"

// Categories is the default expense category vocabulary. The engine
// tolerates unknown categories; this list exists for UIs and validation
// hints, not enforcement.
var Categories = []string{
	"food",
	"transport",
	"accommodation",
	"activities",
	"shopping",
	"entertainment",
	"health",
	"gifts",
	"utilities",
	CategoryOther,
}

// PaymentMethods is the default settlement/expense payment method
// vocabulary.
var PaymentMethods = []string{
	"cash",
	"credit",
	"upi",
	"bank",
	"other",
}
