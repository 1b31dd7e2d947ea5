package visits

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a visit request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProposed  Status = "PROPOSED"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProposed, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// VisitType classifies the occupational-health visit being requested.
type VisitType string

const (
	VisitPeriodique               VisitType = "PERIODIQUE"
	VisitSurveillanceParticuliere VisitType = "SURVEILLANCE_PARTICULIERE"
	VisitAppelMedecin             VisitType = "APPEL_MEDECIN"
	VisitReprise                  VisitType = "REPRISE"
	VisitSpontanee                VisitType = "SPONTANEE"
	VisitEmbauche                 VisitType = "EMBAUCHE"
)

func (t VisitType) Valid() bool {
	switch t {
	case VisitPeriodique, VisitSurveillanceParticuliere, VisitAppelMedecin,
		VisitReprise, VisitSpontanee, VisitEmbauche:
		return true
	}
	return false
}

// RequiresProposal reports whether the visit type must go through at least
// one slot proposal before confirmation. Return-to-work and pre-hire visits
// cannot be confirmed directly from PENDING.
func (t VisitType) RequiresProposal() bool {
	return t == VisitReprise || t == VisitEmbauche
}

// Modality is the delivery mode of the visit.
type Modality string

const (
	ModalityPresentiel Modality = "PRESENTIEL"
	ModalityDistance   Modality = "DISTANCE"
)

func (m Modality) Valid() bool {
	return m == ModalityPresentiel || m == ModalityDistance
}

// ProposalOutcome records how the employee answered a slot proposal.
// SUPERSEDED marks a proposal that was replaced by a newer one before
// the employee responded.
type ProposalOutcome string

const (
	OutcomePending    ProposalOutcome = "PENDING"
	OutcomeAccepted   ProposalOutcome = "ACCEPTED"
	OutcomeRejected   ProposalOutcome = "REJECTED"
	OutcomeSuperseded ProposalOutcome = "SUPERSEDED"
)

// SlotProposal is one candidate slot offered by medical staff. Proposals are
// appended to the request history and never mutated afterwards except for
// their outcome.
type SlotProposal struct {
	ProposedDate string          `json:"proposedDate"`
	ProposedTime string          `json:"proposedTime"`
	Modality     Modality        `json:"modality"`
	Reason       string          `json:"reason,omitempty"`
	ProposedBy   string          `json:"proposedBy"`
	ProposedAt   time.Time       `json:"proposedAt"`
	Outcome      ProposalOutcome `json:"outcome"`
}

// Confirmation is the agreed final slot.
type Confirmation struct {
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Modality    Modality  `json:"modality"`
	Notes       string    `json:"notes,omitempty"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Rejection records the employee's refusal of the active proposal. Note is
// filled when medical staff maintain the rejection permanently.
type Rejection struct {
	Reason     string    `json:"reason,omitempty"`
	RejectedAt time.Time `json:"rejectedAt"`
	Note       string    `json:"note,omitempty"`
}

// RepriseDetails carries the extra context of a return-to-work visit.
type RepriseDetails struct {
	Category               string `json:"category"`
	Details                string `json:"details,omitempty"`
	HasMedicalCertificates bool   `json:"hasMedicalCertificates"`
}

// VisitRequest is the aggregate root of one scheduling case: the employee's
// initial wish plus the full negotiation history with medical staff.
type VisitRequest struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	EmployeeID          string          `db:"employee_id" json:"employeeId"`
	EmployeeName        string          `db:"employee_name" json:"employeeName"`
	EmployeeEmail       string          `db:"employee_email" json:"employeeEmail"`
	VisitType           VisitType       `db:"visit_type" json:"visitType"`
	Motif               string          `db:"motif" json:"motif,omitempty"`
	DesiredDate         string          `db:"desired_date" json:"desiredDate"`
	DesiredTime         string          `db:"desired_time" json:"desiredTime"`
	Modality            Modality        `db:"modality" json:"modality"`
	Status              Status          `db:"status" json:"status"`
	PermanentlyRejected bool            `db:"permanently_rejected" json:"permanentlyRejected"`
	ActiveProposal      *SlotProposal   `db:"active_proposal" json:"activeProposal,omitempty"`
	Confirmation        *Confirmation   `db:"confirmation" json:"confirmation,omitempty"`
	Rejection           *Rejection      `db:"rejection" json:"rejection,omitempty"`
	ProposalHistory     []SlotProposal  `db:"proposal_history" json:"proposalHistory"`
	RepriseDetails      *RepriseDetails `db:"reprise_details" json:"repriseDetails,omitempty"`
	Version             int             `db:"version" json:"version"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProposalOrdinal returns the 1-based rank of the latest proposal, shown to
// operators as "Nth proposal".
func (r *VisitRequest) ProposalOrdinal() int {
	return len(r.ProposalHistory)
}

// Open reports whether the request still admits negotiation: anything that is
// not confirmed and not permanently rejected.
func (r *VisitRequest) Open() bool {
	if r.Status == StatusConfirmed {
		return false
	}
	return !r.PermanentlyRejected
}

// StatusCounts is the per-status summary derived from the store on demand.
type StatusCounts struct {
	Pending   int `json:"PENDING"`
	Proposed  int `json:"PROPOSED"`
	Confirmed int `json:"CONFIRMED"`
	Rejected  int `json:"REJECTED"`
	Total     int `json:"total"`
}
