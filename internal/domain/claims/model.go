package claims

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Status is the processing state of a claim.
type Status string

const (
	StatusRejected    Status = "REJECTED"
	StatusPending     Status = "PENDING"
	StatusCall        Status = "CALL"
	StatusResubmitted Status = "RESUBMITTED"
)

// Statuses lists every claim status in display order.
var Statuses = []Status{StatusRejected, StatusPending, StatusCall, StatusResubmitted}

// ParseStatus returns the status matching s exactly.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

type InsuranceType string

const (
	InsurancePrimary   InsuranceType = "Primary"
	InsuranceSecondary InsuranceType = "Secondary"
)

type PMSSyncStatus string

const (
	PMSSynced    PMSSyncStatus = "Synced"
	PMSNotSynced PMSSyncStatus = "Not Synced"
)

const (
	dateLayout     = "Jan 02, 2006"
	dateTimeLayout = "Jan 02, 2006 3:04 PM"
)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// Claim is a single insurance claim row. Values are never mutated after the
// store is built.
type Claim struct {
	ID                    string        `json:"id"`
	PatientFirstName      string        `json:"patient_first_name"`
	PatientLastName       string        `json:"patient_last_name"`
	PatientID             string        `json:"patient_id"`
	ServiceDate           time.Time     `json:"service_date"`
	InsuranceCarrier      string        `json:"insurance_carrier"`
	InsuranceType         InsuranceType `json:"insurance_type"`
	Amount                float64       `json:"amount"`
	Status                Status        `json:"status"`
	LastUpdated           time.Time     `json:"last_updated"`
	User                  string        `json:"user"`
	DateSent              time.Time     `json:"date_sent"`
	DateSentOrig          time.Time     `json:"date_sent_orig"`
	PMSSyncStatus         PMSSyncStatus `json:"pms_sync_status"`
	PMSSyncStatusModified string        `json:"pms_sync_status_modified,omitempty"`
	ProviderFirstName     string        `json:"provider_first_name"`
	ProviderLastName      string        `json:"provider_last_name"`
	ProviderID            string        `json:"provider_id"`
}

// Validate checks the record invariants.
func (c *Claim) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("claim id is required")
	}
	if c.Amount < 0 {
		return fmt.Errorf("claim %s: amount must be >= 0, got %.2f", c.ID, c.Amount)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("claim %s: invalid status %q", c.ID, c.Status)
	}
	if c.ServiceDate.IsZero() || c.LastUpdated.IsZero() {
		return fmt.Errorf("claim %s: service date and last updated are required", c.ID)
	}
	if c.InsuranceType != InsurancePrimary && c.InsuranceType != InsuranceSecondary {
		return fmt.Errorf("claim %s: invalid insurance type %q", c.ID, c.InsuranceType)
	}
	return nil
}

// PatientName is "First Last", the string that search matches against.
func (c *Claim) PatientName() string {
	return c.PatientFirstName + " " + c.PatientLastName
}

func (c *Claim) ProviderName() string {
	return c.ProviderFirstName + " " + c.ProviderLastName
}

func (c *Claim) ServiceDateLabel() string  { return c.ServiceDate.Format(dateLayout) }
func (c *Claim) DateSentLabel() string     { return c.DateSent.Format(dateLayout) }
func (c *Claim) DateSentOrigLabel() string { return c.DateSentOrig.Format(dateLayout) }
func (c *Claim) LastUpdatedLabel() string  { return c.LastUpdated.Format(dateTimeLayout) }

// AmountLabel formats the amount as US dollars with thousands grouping.
func (c *Claim) AmountLabel() string {
	return amountPrinter.Sprintf("$%.2f", c.Amount)
}

var userColors = map[byte]string{
	'A': "bg-red-100 text-red-800", 'B': "bg-blue-100 text-blue-800",
	'C': "bg-green-100 text-green-800", 'D': "bg-purple-100 text-purple-800",
	'E': "bg-pink-100 text-pink-800", 'F': "bg-indigo-100 text-indigo-800",
	'G': "bg-yellow-100 text-yellow-800", 'H': "bg-teal-100 text-teal-800",
	'I': "bg-orange-100 text-orange-800", 'J': "bg-cyan-100 text-cyan-800",
	'K': "bg-lime-100 text-lime-800", 'L': "bg-emerald-100 text-emerald-800",
	'M': "bg-violet-100 text-violet-800", 'N': "bg-fuchsia-100 text-fuchsia-800",
	'O': "bg-rose-100 text-rose-800", 'P': "bg-sky-100 text-sky-800",
	'Q': "bg-amber-100 text-amber-800", 'R': "bg-slate-100 text-slate-800",
	'S': "bg-zinc-100 text-zinc-800", 'T': "bg-stone-100 text-stone-800",
	'U': "bg-red-200 text-red-900", 'V': "bg-blue-200 text-blue-900",
	'W': "bg-green-200 text-green-900", 'X': "bg-purple-200 text-purple-900",
	'Y': "bg-pink-200 text-pink-900", 'Z': "bg-indigo-200 text-indigo-900",
}

// UserColor returns the badge classes for a user's initials, keyed by the
// first letter.
func UserColor(initials string) string {
	if initials == "" {
		return "bg-gray-100 text-gray-800"
	}
	if cls, ok := userColors[strings.ToUpper(initials[:1])[0]]; ok {
		return cls
	}
	return "bg-gray-100 text-gray-800"
}
