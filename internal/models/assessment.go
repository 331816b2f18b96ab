package models

// Request field names as they appear on the wire.
const (
	FieldAge                     = "age"
	FieldFamilyGrossIncome       = "familyGrossIncome"
	FieldMonthlyIncome           = "monthlyIncome" // legacy alias of familyGrossIncome
	FieldFamilyExpenses          = "familyExpenses"
	FieldTotalAssets             = "totalAssets"
	FieldTotalDebt               = "totalDebt"
	FieldDependentsPenalty       = "dependentsPenalty"
	FieldRetirementStrategy      = "retirementStrategy"
	FieldRetirementExpenseChange = "retirementExpenseChange"
	FieldRetirementAge           = "retirementAge"
	FieldRetirementSavings       = "retirementSavings"
	FieldNetWorth                = "netWorth"
)

// AssessmentRequest is the decoded form of one input record. Bucket fields
// keep the raw value so the range parser can accept numbers or labels.
type AssessmentRequest struct {
	Age                     string
	GrossIncome             interface{}
	FamilyExpenses          interface{}
	TotalAssets             interface{}
	TotalDebt               interface{}
	DependentsPenalty       string
	RetirementStrategy      string
	RetirementExpenseChange string
	RetirementAge           interface{}
	RetirementSavings       interface{}
	NetWorth                interface{}
}

// SubscoreStatus says how a subscore value was produced.
type SubscoreStatus string

const (
	StatusOK          SubscoreStatus = "ok"
	StatusDegraded    SubscoreStatus = "degraded"
	StatusUnavailable SubscoreStatus = "unavailable"
)

// Subscore is the wire form of a calculator outcome. Score is nil when the
// subscore is unavailable.
type Subscore struct {
	Score  *float64       `json:"score"`
	Status SubscoreStatus `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Detail string         `json:"detail,omitempty"`
}

// RetirementProjection carries the intermediate ratios of the retirement model.
type RetirementProjection struct {
	CurrentRatio   float64 `json:"currentRatio"`
	TargetRatio    float64 `json:"targetRatio"`
	FutureRatio    float64 `json:"futureRatio"`
	ReadinessRatio float64 `json:"readinessRatio"`
	Score          float64 `json:"score"`
}

// AssessmentResult is returned for every accepted request.
type AssessmentResult struct {
	AssessmentID      string                 `json:"assessmentId,omitempty"`
	IncomeScore       *float64               `json:"incomeScore"`
	FamilyBudgetScore *float64               `json:"familyBudgetScore"`
	NetWorthScore     *float64               `json:"netWorthScore"`
	RetirementScore   *float64               `json:"retirementScore"`
	OverallScore      *float64               `json:"overallScore"`
	Subscores         map[string]Subscore    `json:"subscores"`
	Retirement        RetirementProjection   `json:"retirement"`
	ReceivedData      map[string]interface{} `json:"receivedData"`
}

// Subscore names used as keys in AssessmentResult.Subscores and metric labels.
const (
	SubscoreIncome       = "income"
	SubscoreFamilyBudget = "familyBudget"
	SubscoreNetWorth     = "netWorth"
	SubscoreRetirement   = "retirement"
)
