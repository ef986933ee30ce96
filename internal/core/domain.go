package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bucket labels used when an expense cannot be attributed to a known member.
const (
	BucketHousehold = "Household"
	BucketOther     = "Other"
)

// Uncategorized is the sentinel label expenses are reassigned to when a
// category they referenced is deleted with the reassign policy.
const Uncategorized = "Uncategorized"

type (
	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	Member struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	}

	Project struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Notes       string `json:"notes"`
	}

	Expense struct {
		ID            string    `json:"id"`
		Amount        Money     `json:"amount"`
		Date          Date      `json:"date"`
		Source        string    `json:"source"`
		PaymentMethod string    `json:"paymentMethod"`
		MemberIDs     []string  `json:"memberIds"`
		ProjectID     string    `json:"projectId,omitempty"`
		Notes         string    `json:"notes,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
	}

	// Draft carries the caller-supplied fields of an expense. The ledger
	// assigns ID and CreatedAt itself; a draft never overrides them.
	Draft struct {
		Amount        Money
		Date          Date
		Source        string
		PaymentMethod string
		MemberIDs     []string
		ProjectID     string
		Notes         string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptySource   = errors.New("empty source")
	ErrEmptyName     = errors.New("empty name")
	ErrNotFound      = errors.New("not found")
)

// NewID returns a fresh opaque identifier for an expense, member or project.
func NewID() string {
	return uuid.NewString()
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in ISO "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in ISO form, the key format used for day grouping.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (dr Draft) Validate() error {
	if err := dr.Amount.Validate(); err != nil {
		return err
	}
	if err := dr.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(dr.Source) == "" {
		return ErrEmptySource
	}
	return nil
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Assigned reports whether the expense references the given member id.
func (e Expense) Assigned(memberID string) bool {
	for _, id := range e.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Unassigned reports whether the expense belongs to the household at large.
func (e Expense) Unassigned() bool {
	return len(e.MemberIDs) == 0
}
