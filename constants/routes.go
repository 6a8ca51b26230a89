package constants

// Backend endpoints. Paths with a %s verb take a complaint id.
const (
	RouteLogin      = "/api/auth/login"
	RouteRequestOTP = "/api/auth/request-otp"
	RouteVerifyOTP  = "/api/auth/verify-otp"
	RouteLogout     = "/api/auth/logout"
	RouteMe         = "/api/auth/me"

	RouteComplaints        = "/api/complaints"
	RouteComplaint         = "/api/complaints/%s"
	RouteComplaintActivity = "/api/complaints/%s/activity"
	RouteContactOfficer    = "/api/complaints/contact-officer"

	RouteTriggerAlerts   = "/api/alerts/trigger"
	RouteGoldenHourAlert = "/api/alerts/golden-hour"
	RouteBankFreezeAlert = "/api/alerts/bank-freeze"
	RouteAlertStatus     = "/api/alerts/%s/status"

	RouteAnalyticsSummary = "/api/analytics/summary"
	RouteCasesByStatus    = "/api/analytics/by-status"
	RouteFraudTypes       = "/api/analytics/fraud-types"
	RouteByDistrict       = "/api/analytics/by-district"
	RoutePriorityCases    = "/api/analytics/priority-cases"
)
