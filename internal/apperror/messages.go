package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidState:       "Invalid state for this operation",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeMarketFetchFailed:  "Failed to fetch market data",
	CodeMarketDecodeFailed: "Failed to decode market data response",
	CodeRiskScoreFailed:    "Risk scoring call failed",
	CodeGasOracleFailed:    "Gas price lookup failed",
	CodeServiceTimeout:     "Service request timeout",
	CodeRateLimitExceeded:  "Rate limit exceeded",
	CodeCircuitOpen:        "Circuit breaker is open",

	CodeSlotOccupied:        "A decision is already pending",
	CodeDecisionNotPending:  "No decision is pending",
	CodeOpportunityMismatch: "Command targets a different opportunity",

	CodeInvalidRoute:      "Invalid execution route",
	CodeInvalidLoanAmount: "Invalid loan amount",
}
