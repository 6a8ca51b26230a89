package constants

// Portal roles.
const (
	RoleVictim = "victim"
	RolePolice = "police"
	RoleBank   = "bank"
)

// Case statuses as the backend names them.
const (
	StatusPending         = "PENDING"
	StatusInProcess       = "IN_PROCESS"
	StatusBankActionTaken = "BANK_ACTION_TAKEN"
	StatusRefunded        = "REFUNDED"
	StatusClosed          = "CLOSED"
)

var CaseStatuses = []string{StatusPending, StatusInProcess, StatusBankActionTaken, StatusRefunded, StatusClosed}

const (
	FraudUPIScam        = "UPI_SCAM"
	FraudPhishing       = "PHISHING"
	FraudOnlineShopping = "ONLINE_SHOPPING"
	FraudInvestment     = "INVESTMENT_FRAUD"
	FraudLoan           = "LOAN_FRAUD"
	FraudSocialMedia    = "SOCIAL_MEDIA"
	FraudJob            = "JOB_FRAUD"
	FraudOther          = "OTHER"
)

var FraudTypes = []string{
	FraudUPIScam, FraudPhishing, FraudOnlineShopping, FraudInvestment,
	FraudLoan, FraudSocialMedia, FraudJob, FraudOther,
}

// Alert channels fired by /api/alerts/trigger.
const (
	AlertGoldenHour        = "golden_hour"
	AlertHighAmount        = "high_amount"
	AlertBankFreeze        = "bank_freeze"
	AlertI4CSync           = "i4c_sync"
	AlertPoliceStation     = "police_station"
	AlertDistrictCyberCell = "district_cyber_cell"
	AlertPattern           = "pattern_alert"
)

// Outcome of a single-channel alert.
const (
	AlertSent   = "sent"
	AlertFailed = "failed"
)

// Activity log action types.
const (
	ActionComplaintRegistered = "COMPLAINT_REGISTERED"
	ActionFIRFiled            = "FIR_FILED"
	ActionBankNotified        = "BANK_NOTIFIED"
	ActionFundsFrozen         = "FUNDS_FROZEN"
	ActionRecoveryInitiated   = "RECOVERY_INITIATED"
	ActionRefundProcessed     = "REFUND_PROCESSED"
	ActionCaseClosed          = "CASE_CLOSED"
)

// Contact-officer request enumerations.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	ContactEmail = "email"
	ContactPhone = "phone"
	ContactSMS   = "sms"
)
