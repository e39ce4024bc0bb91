package models

// Transaction type hints as reported by bank adapters
const (
	TypeHintDebit  = "debit"
	TypeHintCredit = "credit"
)

// Confidence bounds shared by every tier
const (
	MinConfidence = 0.0
	MaxConfidence = 100.0
)

// UnknownAnswer is the token the completion API returns when no category fits.
const UnknownAnswer = "UNKNOWN"

// TransferCategoryName is the category name that triggers the transfer shortcut.
const TransferCategoryName = "transfer"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
)
