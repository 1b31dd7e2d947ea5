package visits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements the negotiation protocol between an employee and medical
// staff. Every transition re-reads the persisted state, validates the
// precondition against it and writes back under the request's version guard,
// so a stale client can never push the request into an illegal state.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateInput carries the employee's initial wish.
type CreateInput struct {
	EmployeeID    string          `json:"employeeId"`
	EmployeeName  string          `json:"employeeName"`
	EmployeeEmail string          `json:"employeeEmail"`
	VisitType     VisitType       `json:"visitType"`
	Motif         string          `json:"motif"`
	DesiredDate   string          `json:"desiredDate"`
	DesiredTime   string          `json:"desiredTime"`
	Modality      Modality        `json:"modality"`
	Reprise       *RepriseDetails `json:"repriseDetails"`
}

// SlotInput carries one candidate slot from medical staff. It backs both
// ProposeSlot and ProposeAfterRejection.
type SlotInput struct {
	Date       string   `json:"proposedDate"`
	Time       string   `json:"proposedTime"`
	Modality   Modality `json:"modality"`
	Reason     string   `json:"reason"`
	ProposedBy string   `json:"proposedBy"`
}

// ConfirmInput carries the slot medical staff confirm directly.
type ConfirmInput struct {
	Date     string   `json:"confirmedDate"`
	Time     string   `json:"confirmedTime"`
	Modality Modality `json:"modality"`
	Notes    string   `json:"notes"`
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Create opens a new scheduling case in PENDING. An employee may only have
// one case in flight; confirmed or permanently rejected requests do not block
// a new one.
func (s *Service) Create(ctx context.Context, in CreateInput) (*VisitRequest, error) {
	if in.EmployeeID == "" {
		return nil, &ValidationError{Field: "employeeId", Reason: "required"}
	}
	if !in.VisitType.Valid() {
		return nil, &ValidationError{Field: "visitType", Reason: "unknown visit type"}
	}
	if in.VisitType == VisitSpontanee && in.Motif == "" {
		return nil, &ValidationError{Field: "motif", Reason: "required for spontaneous visits"}
	}
	// A spontaneous visit may be filed on motif alone; every other type
	// names the slot the employee wants.
	if in.VisitType != VisitSpontanee {
		if in.DesiredDate == "" {
			return nil, &ValidationError{Field: "desiredDate", Reason: "required"}
		}
		if in.DesiredTime == "" {
			return nil, &ValidationError{Field: "desiredTime", Reason: "required"}
		}
	}
	if in.DesiredDate != "" && !validDate(in.DesiredDate) {
		return nil, &ValidationError{Field: "desiredDate", Reason: "must be YYYY-MM-DD"}
	}
	if in.DesiredTime != "" && !validClock(in.DesiredTime) {
		return nil, &ValidationError{Field: "desiredTime", Reason: "must be HH:MM"}
	}
	if in.Modality == "" {
		in.Modality = ModalityPresentiel
	}
	if !in.Modality.Valid() {
		return nil, &ValidationError{Field: "modality", Reason: "unknown modality"}
	}
	if in.Reprise != nil && in.VisitType != VisitReprise {
		return nil, &ValidationError{Field: "repriseDetails", Reason: "only allowed for REPRISE visits"}
	}

	existing, err := s.repo.GetOpenByEmployee(ctx, in.EmployeeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Field: "employeeId", Reason: "employee already has an open visit request"}
	}

	r := &VisitRequest{
		EmployeeID:          in.EmployeeID,
		EmployeeName:        in.EmployeeName,
		EmployeeEmail:       in.EmployeeEmail,
		VisitType:           in.VisitType,
		Motif:               in.Motif,
		DesiredDate:         in.DesiredDate,
		DesiredTime:         in.DesiredTime,
		Modality:            in.Modality,
		Status:              StatusPending,
		ProposalHistory:     []SlotProposal{},
		RepriseDetails:      in.Reprise,
		PermanentlyRejected: false,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*VisitRequest, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	return s.repo.CountByStatus(ctx)
}

func (in SlotInput) validate() error {
	if in.Date == "" || !validDate(in.Date) {
		return &ValidationError{Field: "proposedDate", Reason: "must be YYYY-MM-DD"}
	}
	if in.Time == "" || !validClock(in.Time) {
		return &ValidationError{Field: "proposedTime", Reason: "must be HH:MM"}
	}
	if !in.Modality.Valid() {
		return &ValidationError{Field: "modality", Reason: "unknown modality"}
	}
	if in.ProposedBy == "" {
		return &ValidationError{Field: "proposedBy", Reason: "required"}
	}
	return nil
}

// DirectConfirm books the request as asked, without a proposal round. Only
// legal from PENDING, and never for visit types that require a proposal.
func (s *Service) DirectConfirm(ctx context.Context, id uuid.UUID, in ConfirmInput) (*VisitRequest, error) {
	if in.Date == "" || !validDate(in.Date) {
		return nil, &ValidationError{Field: "confirmedDate", Reason: "must be YYYY-MM-DD"}
	}
	if in.Time == "" || !validClock(in.Time) {
		return nil, &ValidationError{Field: "confirmedTime", Reason: "must be HH:MM"}
	}
	if !in.Modality.Valid() {
		return nil, &ValidationError{Field: "modality", Reason: "unknown modality"}
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.VisitType.RequiresProposal() {
		return nil, &TransitionError{Op: "direct confirm", Status: r.Status}
	}
	if r.Status != StatusPending {
		return nil, &TransitionError{Op: "direct confirm", Status: r.Status, PermanentlyRejected: r.PermanentlyRejected}
	}

	r.Status = StatusConfirmed
	r.Confirmation = &Confirmation{
		Date:        in.Date,
		Time:        in.Time,
		Modality:    in.Modality,
		Notes:       in.Notes,
		ConfirmedAt: s.now(),
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ProposeSlot offers a new candidate slot to the employee. Legal from PENDING,
// from PROPOSED (the unanswered proposal is superseded) and from a rejection
// that was not maintained. The request moves to PROPOSED with the new slot as
// the active proposal.
func (s *Service) ProposeSlot(ctx context.Context, id uuid.UUID, in SlotInput) (*VisitRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case r.Status == StatusConfirmed:
		return nil, &TransitionError{Op: "propose", Status: r.Status}
	case r.Status == StatusRejected && r.PermanentlyRejected:
		return nil, &TransitionError{Op: "propose", Status: r.Status, PermanentlyRejected: true}
	}

	s.supersedePending(r)

	p := SlotProposal{
		ProposedDate: in.Date,
		ProposedTime: in.Time,
		Modality:     in.Modality,
		Reason:       in.Reason,
		ProposedBy:   in.ProposedBy,
		ProposedAt:   s.now(),
		Outcome:      OutcomePending,
	}
	r.ProposalHistory = append(r.ProposalHistory, p)
	r.ActiveProposal = &p
	r.Status = StatusProposed
	r.Rejection = nil

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ProposeAfterRejection records a slot that was already agreed with the
// employee off-band after a rejection, confirming it in one step. The
// proposal still lands in history, already accepted.
func (s *Service) ProposeAfterRejection(ctx context.Context, id uuid.UUID, in SlotInput) (*VisitRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusRejected || r.PermanentlyRejected {
		return nil, &TransitionError{Op: "propose after rejection", Status: r.Status, PermanentlyRejected: r.PermanentlyRejected}
	}

	now := s.now()
	p := SlotProposal{
		ProposedDate: in.Date,
		ProposedTime: in.Time,
		Modality:     in.Modality,
		Reason:       in.Reason,
		ProposedBy:   in.ProposedBy,
		ProposedAt:   now,
		Outcome:      OutcomeAccepted,
	}
	r.ProposalHistory = append(r.ProposalHistory, p)
	r.ActiveProposal = nil
	r.Status = StatusConfirmed
	r.Confirmation = &Confirmation{
		Date:        in.Date,
		Time:        in.Time,
		Modality:    in.Modality,
		Notes:       in.Reason,
		ConfirmedAt: now,
	}
	r.Rejection = nil

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AcceptProposal is the employee's yes to the active proposal.
func (s *Service) AcceptProposal(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusProposed || r.ActiveProposal == nil {
		return nil, &TransitionError{Op: "accept proposal", Status: r.Status, PermanentlyRejected: r.PermanentlyRejected}
	}

	r.setActiveOutcome(OutcomeAccepted)
	r.Status = StatusConfirmed
	r.Confirmation = &Confirmation{
		Date:        r.ActiveProposal.ProposedDate,
		Time:        r.ActiveProposal.ProposedTime,
		Modality:    r.ActiveProposal.Modality,
		Notes:       r.ActiveProposal.Reason,
		ConfirmedAt: s.now(),
	}
	r.ActiveProposal = nil

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// RejectProposal is the employee's no to the active proposal. The request
// stays negotiable: medical staff may propose again or maintain the
// rejection.
func (s *Service) RejectProposal(ctx context.Context, id uuid.UUID, reason string) (*VisitRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusProposed || r.ActiveProposal == nil {
		return nil, &TransitionError{Op: "reject proposal", Status: r.Status, PermanentlyRejected: r.PermanentlyRejected}
	}

	r.setActiveOutcome(OutcomeRejected)
	r.ActiveProposal = nil
	r.Status = StatusRejected
	r.PermanentlyRejected = false
	r.Rejection = &Rejection{Reason: reason, RejectedAt: s.now()}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// MaintainRejected makes the rejection final. From here only a full reset of
// the employee's requests can touch the record again.
func (s *Service) MaintainRejected(ctx context.Context, id uuid.UUID, note string) (*VisitRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusRejected || r.PermanentlyRejected {
		return nil, &TransitionError{Op: "maintain rejection", Status: r.Status, PermanentlyRejected: r.PermanentlyRejected}
	}

	r.PermanentlyRejected = true
	if r.Rejection != nil {
		r.Rejection.Note = note
	} else {
		r.Rejection = &Rejection{Note: note, RejectedAt: s.now()}
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("request_id", r.ID.String()).
		Str("employee_id", r.EmployeeID).
		Str("note", note).
		Msg("visit request permanently rejected")
	return r, nil
}

// ResetEmployeeRequests deletes every request of the employee, history
// included. Administrative and test-hygiene use only; there is no undo.
func (s *Service) ResetEmployeeRequests(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return &ValidationError{Field: "employeeId", Reason: "required"}
	}
	n, err := s.repo.DeleteByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	s.logger.Info().
		Str("employee_id", employeeID).
		Int64("deleted", n).
		Msg("visit requests reset")
	return nil
}

// supersedePending marks the still-unanswered active proposal SUPERSEDED so
// two pending entries never coexist in history.
func (s *Service) supersedePending(r *VisitRequest) {
	if r.ActiveProposal == nil {
		return
	}
	r.setActiveOutcome(OutcomeSuperseded)
	r.ActiveProposal = nil
}

// setActiveOutcome updates the outcome of the latest history entry still
// PENDING, keeping the mirror in ActiveProposal consistent.
func (r *VisitRequest) setActiveOutcome(o ProposalOutcome) {
	for i := len(r.ProposalHistory) - 1; i >= 0; i-- {
		if r.ProposalHistory[i].Outcome == OutcomePending {
			r.ProposalHistory[i].Outcome = o
			break
		}
	}
	if r.ActiveProposal != nil {
		r.ActiveProposal.Outcome = o
	}
}
