package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClaimStatus represents where a claim is in adjudication
type ClaimStatus string

const (
	ClaimStatusPending     ClaimStatus = "pending"
	ClaimStatusApproved    ClaimStatus = "approved"
	ClaimStatusUnderReview ClaimStatus = "under_review"
	ClaimStatusRejected    ClaimStatus = "rejected"
)

// ClaimType represents the line of insurance a claim is filed under
type ClaimType string

const (
	ClaimTypeMotor    ClaimType = "motor"
	ClaimTypeProperty ClaimType = "property"
	ClaimTypeHealth   ClaimType = "health"
)

// Claim represents an insurance claim as submitted
type Claim struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	CustomerID   uuid.UUID   `json:"customer_id" db:"customer_id"`
	PolicyNumber string      `json:"policy_number" db:"policy_number"`
	ClaimType    ClaimType   `json:"claim_type" db:"claim_type"`
	IncidentDate time.Time   `json:"incident_date" db:"incident_date"`
	Description  string      `json:"incident_description" db:"incident_description"`
	ImageURLs    []string    `json:"images" db:"images"`
	Status       ClaimStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// PolicyContext is the read-only policy data adjudication depends on
type PolicyContext struct {
	PolicyNumber    string    `json:"policy_number" db:"policy_number"`
	PolicyStartDate time.Time `json:"policy_start_date" db:"policy_start_date"`
	PolicyEndDate   time.Time `json:"policy_end_date" db:"policy_end_date"`
	PolicyLimit     int64     `json:"policy_limit" db:"policy_limit"`
}

// ClaimOutcome is the single write-back at the end of a pipeline run
type ClaimOutcome struct {
	DamageAssessment  json.RawMessage `json:"damage_assessment" db:"damage_assessment"`
	EstimatedAmount   int64           `json:"estimated_amount" db:"estimated_amount"`
	FraudScore        int             `json:"fraud_score" db:"fraud_score"`
	FraudFlags        []string        `json:"fraud_flags" db:"fraud_flags"`
	Status            ClaimStatus     `json:"status" db:"status"`
	ApprovedAmount    *int64          `json:"approved_amount,omitempty" db:"approved_amount"`
	DecisionReason    string          `json:"decision_reason" db:"decision_reason"`
	DecisionTimestamp time.Time       `json:"decision_timestamp" db:"decision_timestamp"`
}
