package core

type (
	ExpenseCategory     string
	AssetCategory       string
	LiabilityCategory   string
	PaymentMethod       string
	ReimbursementStatus string
	IncomeSource        string
	GoalType            string
	Relationship        string
	Liquidity           string
)

const (
	FoodDining          ExpenseCategory = "food_dining"
	Groceries           ExpenseCategory = "groceries"
	TransportTravel     ExpenseCategory = "transport_travel"
	UtilitiesRent       ExpenseCategory = "utilities_rent"
	Subscriptions       ExpenseCategory = "subscriptions"
	FitnessHealth       ExpenseCategory = "fitness_health"
	FamilyHouseSupplies ExpenseCategory = "family_house_supplies"
	Personal            ExpenseCategory = "personal"
	Gifts               ExpenseCategory = "gifts"
	Leisure             ExpenseCategory = "leisure"
	OtherExpense        ExpenseCategory = "other"
)

const (
	MutualFunds   AssetCategory = "mutual_funds"
	StocksIndia   AssetCategory = "stocks_india"
	StocksOther   AssetCategory = "stocks_other"
	EPF           AssetCategory = "epf"
	PPF           AssetCategory = "ppf"
	FixedDeposits AssetCategory = "fixed_deposits"
	DigitalAssets AssetCategory = "digital_assets"
	Gold          AssetCategory = "gold"
	RealEstate    AssetCategory = "real_estate"
	LiquidCash    AssetCategory = "liquid_cash"
	Forex         AssetCategory = "forex"
	EsopsRsus     AssetCategory = "esops_rsus"
	P2PLending    AssetCategory = "p2p_lending"
	Owed          AssetCategory = "owed"
	Debt          AssetCategory = "debt"
)

const (
	HomeLoan     LiabilityCategory = "home_loan"
	CarLoan      LiabilityCategory = "car_loan"
	PersonalLoan LiabilityCategory = "personal_loan"
	CreditCard   LiabilityCategory = "credit_card"
	InformalLoan LiabilityCategory = "informal_loan"
)

const (
	PayCreditCard    PaymentMethod = "credit_card"
	PayDebitCard     PaymentMethod = "debit_card"
	PayUPI           PaymentMethod = "upi"
	PayTransfer      PaymentMethod = "transfer"
	PayCash          PaymentMethod = "cash"
	PayDigitalWallet PaymentMethod = "digital_wallet"
)

const (
	ReimbursementNone       ReimbursementStatus = "none"
	ReimbursementPending    ReimbursementStatus = "pending"
	ReimbursementReimbursed ReimbursementStatus = "reimbursed"
)

func (s ReimbursementStatus) Valid() bool {
	switch s {
	case ReimbursementNone, ReimbursementPending, ReimbursementReimbursed:
		return true
	}
	return false
}

const (
	Salary      IncomeSource = "salary"
	Bonus       IncomeSource = "bonus"
	Dividend    IncomeSource = "dividend"
	Interest    IncomeSource = "interest"
	OtherIncome IncomeSource = "other"
)

const (
	GoalNetWorth GoalType = "net_worth"
	GoalSavings  GoalType = "savings"
	GoalPurchase GoalType = "purchase"
)

const (
	RelSelf   Relationship = "self"
	RelSpouse Relationship = "spouse"
	RelOther  Relationship = "other"
)

const (
	Liquid   Liquidity = "liquid"
	Illiquid Liquidity = "illiquid"
)

// OtherColor is used for the synthetic "Other" slice of reduced pie charts.
const OtherColor = "#94a3b8"

var ExpenseCategoryLabels = map[ExpenseCategory]string{
	FoodDining:          "Food & Dining",
	Groceries:           "Groceries",
	TransportTravel:     "Transport / Travel",
	UtilitiesRent:       "Utilities & Rent",
	Subscriptions:       "Subscriptions",
	FitnessHealth:       "Fitness and Health",
	FamilyHouseSupplies: "Family & House Supplies",
	Personal:            "Personal",
	Gifts:               "Gifts",
	Leisure:             "Leisure",
	OtherExpense:        "Other",
}

var ExpenseCategoryColors = map[ExpenseCategory]string{
	FoodDining:          "#f97316",
	Groceries:           "#22c55e",
	TransportTravel:     "#3b82f6",
	UtilitiesRent:       "#8b5cf6",
	Subscriptions:       "#ec4899",
	FitnessHealth:       "#14b8a6",
	FamilyHouseSupplies: "#f59e0b",
	Personal:            "#6366f1",
	Gifts:               "#ef4444",
	Leisure:             "#06b6d4",
	OtherExpense:        "#64748b",
}

var AssetCategoryLabels = map[AssetCategory]string{
	MutualFunds:   "Mutual Funds",
	StocksIndia:   "Stocks - India",
	StocksOther:   "Stocks - Other",
	EPF:           "EPF",
	PPF:           "PPF",
	FixedDeposits: "Fixed Deposits",
	DigitalAssets: "Digital Assets",
	Gold:          "Gold",
	RealEstate:    "Real Estate",
	LiquidCash:    "Liquid Cash / Bank",
	Forex:         "Forex",
	EsopsRsus:     "ESOPs / RSUs",
	P2PLending:    "P2P Lending",
	Owed:          "Owed (Money Lent)",
	Debt:          "Debt",
}

// AssetLiquidity is the fixed policy table used by the emergency runway.
// Categories missing from it are treated as illiquid.
var AssetLiquidity = map[AssetCategory]Liquidity{
	MutualFunds:   Liquid,
	StocksIndia:   Liquid,
	StocksOther:   Liquid,
	LiquidCash:    Liquid,
	Forex:         Liquid,
	DigitalAssets: Liquid,
	FixedDeposits: Liquid,
	Gold:          Liquid,
	RealEstate:    Illiquid,
	EsopsRsus:     Illiquid,
	EPF:           Illiquid,
	PPF:           Illiquid,
	P2PLending:    Illiquid,
	Owed:          Illiquid,
	Debt:          Illiquid,
}

// ExpenseCategoryCritical holds the default "critical" flag per budget
// category, used when a budget carries no explicit override.
var ExpenseCategoryCritical = map[ExpenseCategory]bool{
	FoodDining:          false,
	Groceries:           true,
	TransportTravel:     true,
	UtilitiesRent:       true,
	Subscriptions:       false,
	FitnessHealth:       true,
	FamilyHouseSupplies: true,
	Personal:            false,
	Gifts:               false,
	Leisure:             false,
	OtherExpense:        false,
}

var LiabilityCategoryLabels = map[LiabilityCategory]string{
	HomeLoan:     "Home Loan",
	CarLoan:      "Car Loan",
	PersonalLoan: "Personal Loan",
	CreditCard:   "Credit Card",
	InformalLoan: "Informal Loan",
}

var PaymentMethodLabels = map[PaymentMethod]string{
	PayCreditCard:    "Credit Card",
	PayDebitCard:     "Debit Card",
	PayUPI:           "UPI",
	PayTransfer:      "Transfer",
	PayCash:          "Cash",
	PayDigitalWallet: "Digital Wallet",
}

var IncomeSourceLabels = map[IncomeSource]string{
	Salary:      "Salary",
	Bonus:       "Bonus",
	Dividend:    "Dividend",
	Interest:    "Interest",
	OtherIncome: "Other",
}

var GoalTypeLabels = map[GoalType]string{
	GoalNetWorth: "Net Worth Target",
	GoalSavings:  "Savings Goal",
	GoalPurchase: "Purchase Goal",
}

// ChartPalette is assigned positionally to chart series.
var ChartPalette = []string{
	"#2563eb",
	"#16a34a",
	"#f59e0b",
	"#dc2626",
	"#7c3aed",
	"#8884d8",
	"#82ca9d",
	"#ffc658",
	"#ff7300",
	"#00C49F",
	"#FFBB28",
	"#FF8042",
}

var TagColors = []string{
	"#3b82f6", "#22c55e", "#f59e0b", "#ef4444", "#8b5cf6",
	"#ec4899", "#06b6d4", "#f97316", "#14b8a6", "#64748b",
}

// Label returns the display label, or the raw code for unknown categories.
func (c ExpenseCategory) Label() string {
	if l, ok := ExpenseCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c AssetCategory) Label() string {
	if l, ok := AssetCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c LiabilityCategory) Label() string {
	if l, ok := LiabilityCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (p PaymentMethod) Label() string {
	if l, ok := PaymentMethodLabels[p]; ok {
		return l
	}
	return string(p)
}

func (s IncomeSource) Label() string {
	if l, ok := IncomeSourceLabels[s]; ok {
		return l
	}
	return string(s)
}

func (g GoalType) Label() string {
	if l, ok := GoalTypeLabels[g]; ok {
		return l
	}
	return string(g)
}

// IsLiquid reports the liquidity policy for the category.
func (c AssetCategory) IsLiquid() bool {
	return AssetLiquidity[c] == Liquid
}

// DefaultCritical reports whether the category is essential by default.
func (c ExpenseCategory) DefaultCritical() bool {
	return ExpenseCategoryCritical[c]
}

// ExpenseLabels and AssetLabels expose the label tables keyed by raw code,
// the shape consumed by category aggregation.
func ExpenseLabels() map[string]string {
	out := make(map[string]string, len(ExpenseCategoryLabels))
	for k, v := range ExpenseCategoryLabels {
		out[string(k)] = v
	}
	return out
}

func AssetLabels() map[string]string {
	out := make(map[string]string, len(AssetCategoryLabels))
	for k, v := range AssetCategoryLabels {
		out[string(k)] = v
	}
	return out
}
