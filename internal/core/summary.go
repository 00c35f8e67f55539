package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// Summary bundles the derived views a dashboard renders in one read.
type Summary struct {
	Balance    Money            `json:"balance"`
	TotalSpent Money            `json:"total_spent"`
	ByCategory []CategoryAmount `json:"by_category"`
	Top        []Expense        `json:"top"`
	Recent     []Expense        `json:"recent"`
}
