package domain

// PropertyDetails describes the property backing the loan. A nil
// PropertyDetails on ApplicantData means the applicant never supplied them.
type PropertyDetails struct {
	City         string  `json:"city"`
	Area         string  `json:"area"`
	PropertyType string  `json:"property_type"`
	SizeSqft     float64 `json:"size_sqft"`
	AgeYears     int     `json:"age_years"`
	FloorNumber  int     `json:"floor_number"`
	Condition    string  `json:"condition,omitempty"`
	Amenities    string  `json:"amenities,omitempty"`
}

// ApplicantData is the immutable input bag for one workflow run. Stages read
// it and write only to their own result slot; nothing mutates it after intake.
type ApplicantData struct {
	FullName         string           `json:"full_name"`
	DateOfBirth      string           `json:"date_of_birth,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	PANNumber        string           `json:"pan_number"`
	AadhaarNumber    string           `json:"aadhaar_number,omitempty"`
	MaritalStatus    string           `json:"marital_status,omitempty"`
	EmploymentStatus string           `json:"employment_status"`
	CompanyName      string           `json:"company_name,omitempty"`
	MonthlyIncome    float64          `json:"monthly_income"`
	ExistingDebt     float64          `json:"existing_loans"`
	CreditScore      int              `json:"credit_score,omitempty"`
	LoanAmount       float64          `json:"loan_amount"`
	LoanPurpose      string           `json:"purpose_of_loan,omitempty"`
	PropertyValue    float64          `json:"property_value"`
	Property         *PropertyDetails `json:"property_details,omitempty"`
}

// DocumentRef maps a document kind to a storage locator (object key or local
// path). Owned by the caller; read-only to the orchestrator.
type DocumentRef struct {
	Kind    DocKind `json:"kind"`
	Locator string  `json:"locator"`
}

type DocumentCheck struct {
	Check  string      `json:"check"`
	Status CheckStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
	Value  string      `json:"value,omitempty"`
}

type DocumentResult struct {
	Kind    DocKind           `json:"document_kind"`
	Status  CheckStatus       `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ConsolidatedDetails struct {
	ApplicantName      *string  `json:"applicant_name"`
	PANNumber          *string  `json:"pan_number"`
	DateOfBirth        *string  `json:"date_of_birth"`
	CompanyName        *string  `json:"company_name"`
	GrossMonthlySalary *float64 `json:"gross_monthly_salary"`
}

type ValidationReport struct {
	OverallStatus CheckStatus         `json:"overall_status"`
	Checks        []DocumentCheck     `json:"checks"`
	Documents     []DocumentResult    `json:"document_results"`
	Consolidated  ConsolidatedDetails `json:"consolidated_applicant_details"`
}

type PaymentHistory struct {
	TotalAccounts          int `json:"total_accounts"`
	AccountsInGoodStanding int `json:"accounts_in_good_standing"`
	LatePayments30Days     int `json:"late_payments_30_days"`
	LatePayments60Days     int `json:"late_payments_60_days"`
	LatePayments90Days     int `json:"late_payments_90_days"`
}

type BureauReport struct {
	Bureau             string         `json:"bureau"`
	Status             string         `json:"status"`
	CreditScore        int            `json:"credit_score,omitempty"`
	PaymentHistory     PaymentHistory `json:"payment_history,omitempty"`
	CreditUtilization  float64        `json:"credit_utilization,omitempty"`
	CreditHistoryYears int            `json:"credit_history_length,omitempty"`
	RecentInquiries    int            `json:"recent_inquiries,omitempty"`
	Message            string         `json:"message,omitempty"`
}

type RiskAssessment struct {
	RiskScore             float64  `json:"risk_score"`
	RiskLevel             string   `json:"risk_level"`
	RiskFactors           []string `json:"risk_factors"`
	MitigationSuggestions []string `json:"risk_mitigation_suggestions"`
}

type CreditReport struct {
	CreditScore     int            `json:"credit_score"`
	ScoreCategory   string         `json:"score_category"`
	BureauReports   []BureauReport `json:"bureau_reports"`
	Risk            RiskAssessment `json:"risk_assessment"`
	Recommendations []string       `json:"recommendations"`
	Confidence      float64        `json:"confidence_score"`
}

type ValuationReport struct {
	EstimatedValue int64           `json:"estimated_property_value"`
	PricePerSqft   int64           `json:"price_per_sqft"`
	Confidence     float64         `json:"confidence_score"`
	Method         ValuationMethod `json:"valuation_method"`
	ModelAccuracy  *float64        `json:"model_accuracy,omitempty"`
	FallbackReason string          `json:"fallback_reason,omitempty"`
}

type EligibilityChecks struct {
	LTV         bool `json:"ltv_check"`
	CreditScore bool `json:"credit_score_check"`
	Income      bool `json:"income_check"`
	Employment  bool `json:"employment_check"`
	DTI         bool `json:"dti_check"`
}

type EligibilityReport struct {
	IsEligible    bool              `json:"is_eligible"`
	Checks        EligibilityChecks `json:"checks"`
	ApplicantName string            `json:"applicant_name,omitempty"`
	LTV           float64           `json:"ltv"`
	DTI           float64           `json:"dti"`
}

type LoanOption struct {
	Option       string `json:"option"`
	LoanAmount   string `json:"loan_amount"`
	InterestRate string `json:"interest_rate"`
	Tenure       string `json:"tenure"`
	MonthlyEMI   string `json:"monthly_emi"`
	Eligibility  string `json:"eligibility"`
}

type RecommendationReport struct {
	Text    string       `json:"recommendation"`
	Options []LoanOption `json:"table,omitempty"`
}
