// Package domain defines the business types shared by the accruals service,
// its store and its API.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Record is an upstream Concur object passed through without a fixed schema.
type Record = map[string]any

// DateType selects which card transaction date drives a totals window.
type DateType string

// Date type constants.
const (
	DateTransaction DateType = "TRANSACTION"
	DatePosted      DateType = "POSTED"
	DateBilling     DateType = "BILLING"
)

// ParseDateType normalizes s. An empty string yields DateTransaction.
func ParseDateType(s string) (DateType, error) {
	switch DateType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", DateTransaction:
		return DateTransaction, nil
	case DatePosted:
		return DatePosted, nil
	case DateBilling:
		return DateBilling, nil
	default:
		return "", fmt.Errorf("unknown date type %q (want TRANSACTION, POSTED or BILLING)", s)
	}
}

// OrgFilter restricts an org-wide search to users whose Concur extension
// matches every non-empty field exactly (after trimming).
type OrgFilter struct {
	OrgUnit1 string `json:"orgUnit1,omitempty" doc:"Concur org unit 1"`
	OrgUnit2 string `json:"orgUnit2,omitempty" doc:"Concur org unit 2"`
	OrgUnit3 string `json:"orgUnit3,omitempty" doc:"Concur org unit 3"`
	OrgUnit4 string `json:"orgUnit4,omitempty" doc:"Concur org unit 4"`
	OrgUnit5 string `json:"orgUnit5,omitempty" doc:"Concur org unit 5"`
	OrgUnit6 string `json:"orgUnit6,omitempty" doc:"Concur org unit 6"`
	Custom21 string `json:"custom21,omitempty" doc:"Concur custom field 21"`
}

// Fields returns the filter as extension key to wanted value, omitting
// empty fields.
func (f OrgFilter) Fields() map[string]string {
	out := make(map[string]string, 7)
	for k, v := range map[string]string{
		"orgUnit1": f.OrgUnit1,
		"orgUnit2": f.OrgUnit2,
		"orgUnit3": f.OrgUnit3,
		"orgUnit4": f.OrgUnit4,
		"orgUnit5": f.OrgUnit5,
		"orgUnit6": f.OrgUnit6,
		"custom21": f.Custom21,
	} {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// ProgramTotal sums card transactions for one card program.
type ProgramTotal struct {
	CardProgramID string  `json:"cardProgramId"`
	Count         int     `json:"count"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

// UserTotal sums card transactions for one employee, or for an account
// segment when the transaction carries no employee ID.
type UserTotal struct {
	UserKey  string  `json:"userKey"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// CardTotals is the result of totalling transactions over a date window.
type CardTotals struct {
	DateFrom  string         `json:"dateFrom"`
	DateTo    string         `json:"dateTo"`
	DateType  DateType       `json:"dateType"`
	ByProgram []ProgramTotal `json:"totalsByProgram"`
	ByUser    []UserTotal    `json:"totalsByUser"`
	Skipped   int            `json:"skipped"`
}

// CollectionMeta describes how an upstream collection ended.
type CollectionMeta struct {
	Pages      int      `json:"pages"`
	StoppedAt  string   `json:"stoppedAt"`
	Attributes []string `json:"attributes,omitempty"`
}

// UserAccruals holds the upstream records gathered for one user during an
// org-wide search. Error is set when that user's fetch failed.
type UserAccruals struct {
	UserID       string   `json:"userId"`
	UserName     string   `json:"userName,omitempty"`
	DisplayName  string   `json:"displayName,omitempty"`
	Reports      []Record `json:"reports"`
	Transactions []Record `json:"transactions"`
	Error        string   `json:"error,omitempty"`
}

// JobRun records a single execution of a scheduled job.
type JobRun struct {
	ID          string     `json:"id"                     db:"id"`
	JobName     string     `json:"job_name"               db:"job_name"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status      string     `json:"status"                 db:"status"`
	ErrorText   string     `json:"error_text,omitempty"   db:"error_text"`
}

// Job run statuses.
const (
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
	JobCrashed   = "crashed"
)

// RefreshTokenRotation is the audit view of a persisted refresh token. The
// token value itself is never exposed.
type RefreshTokenRotation struct {
	ID        string    `json:"id"         db:"id"`
	Source    string    `json:"source"     db:"source"`
	RotatedAt time.Time `json:"rotated_at" db:"rotated_at"`
}

// CredentialAlert reports that the Concur credentials need attention.
type CredentialAlert struct {
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	TokenURL   string    `json:"token_url"`
	OccurredAt time.Time `json:"occurred_at"`
}
