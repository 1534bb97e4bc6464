package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Transient external-service error codes. These are logged, the current tick
// is skipped, and the operation is retried on its next natural schedule.
const (
	CodeMarketFetchFailed  Code = "MARKET_FETCH_FAILED"
	CodeMarketDecodeFailed Code = "MARKET_DECODE_FAILED"
	CodeRiskScoreFailed    Code = "RISK_SCORE_FAILED"
	CodeGasOracleFailed    Code = "GAS_ORACLE_FAILED"
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeCircuitOpen        Code = "CIRCUIT_OPEN"
)

// Decision-machine error codes
const (
	CodeSlotOccupied        Code = "SLOT_OCCUPIED"
	CodeDecisionNotPending  Code = "DECISION_NOT_PENDING"
	CodeOpportunityMismatch Code = "OPPORTUNITY_MISMATCH"
)

// Domain error codes
const (
	CodeInvalidRoute      Code = "INVALID_ROUTE"
	CodeInvalidLoanAmount Code = "INVALID_LOAN_AMOUNT"
)
