// Package crm holds the customer, deal, task and insight records managed by
// the operations client, and the service that persists them.
package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection names, shared by every storage backend.
const (
	CollectionCustomers = "customers"
	CollectionDeals     = "deals"
	CollectionTasks     = "tasks"
	CollectionInsights  = "insights"
)

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// CustomerStatus is the lifecycle state of a customer.
type CustomerStatus string

const (
	CustomerLead    CustomerStatus = "lead"
	CustomerActive  CustomerStatus = "active"
	CustomerChurned CustomerStatus = "churned"
)

// ParseCustomerStatus parses a status name; empty means lead.
func ParseCustomerStatus(s string) (CustomerStatus, error) {
	switch CustomerStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", CustomerLead:
		return CustomerLead, nil
	case CustomerActive:
		return CustomerActive, nil
	case CustomerChurned:
		return CustomerChurned, nil
	default:
		return "", fmt.Errorf("unknown customer status %q", s)
	}
}

type Customer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Company   string         `json:"company"`
	Email     string         `json:"email"`
	Status    CustomerStatus `json:"status"`
	Value     float64        `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c Customer) EntityID() string { return c.ID }

// Stage is a position in the sales pipeline.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Stages lists every stage in board order.
var Stages = []Stage{StageLead, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost}

func (s Stage) index() int {
	for i, v := range Stages {
		if v == s {
			return i
		}
	}
	return -1
}

// Next returns the stage after s in board order.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 || i == len(Stages)-1 {
		return s, false
	}
	return Stages[i+1], true
}

// Prev returns the stage before s in board order.
func (s Stage) Prev() (Stage, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return Stages[i-1], true
}

// Title is the display name of the stage.
func (s Stage) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Closed reports whether the deal has left the active pipeline.
func (s Stage) Closed() bool {
	return s == StageWon || s == StageLost
}

// ParseStage parses a stage name, case-insensitively.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if st.index() < 0 {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}

type Deal struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CustomerID string  `json:"customer_id"`
	Stage      Stage   `json:"stage"`
	Value      float64 `json:"value"`
	// Probability of closing, 0-100.
	Probability int       `json:"probability"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d Deal) EntityID() string { return d.ID }

// Weighted is the deal value scaled by its close probability.
func (d Deal) Weighted() float64 {
	return d.Value * float64(d.Probability) / 100
}

type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DealID    string    `json:"deal_id,omitempty"`
	Completed bool      `json:"completed"`
	DueAt     time.Time `json:"due_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Task) EntityID() string { return t.ID }

// Overdue reports whether an open task is past its due time.
func (t Task) Overdue(now time.Time) bool {
	return !t.Completed && !t.DueAt.IsZero() && t.DueAt.Before(now)
}

// InsightKind classifies a generated insight.
type InsightKind string

const (
	InsightOpportunity InsightKind = "opportunity"
	InsightRisk        InsightKind = "risk"
	InsightInfo        InsightKind = "info"
)

type Insight struct {
	ID        string      `json:"id"`
	Kind      InsightKind `json:"kind"`
	Message   string      `json:"message"`
	Dismissed bool        `json:"dismissed"`
	CreatedAt time.Time   `json:"created_at"`
}

func (i Insight) EntityID() string { return i.ID }

// CustomerID, DealID, TaskID and InsightID key the optimistic controllers.
func CustomerID(c Customer) string { return c.ID }
func DealID(d Deal) string         { return d.ID }
func TaskID(t Task) string         { return t.ID }
func InsightID(i Insight) string   { return i.ID }
