package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockRepo struct {
	reqs map[uuid.UUID]*VisitRequest
}

func newMockRepo() *mockRepo {
	return &mockRepo{reqs: make(map[uuid.UUID]*VisitRequest)}
}

func (m *mockRepo) Create(_ context.Context, r *VisitRequest) error {
	r.ID = uuid.New()
	r.Version = 1
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.reqs[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*VisitRequest, error) {
	r, ok := m.reqs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) GetOpenByEmployee(_ context.Context, employeeID string) (*VisitRequest, error) {
	for _, r := range m.reqs {
		if r.EmployeeID == employeeID && r.Open() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, r *VisitRequest) error {
	stored, ok := m.reqs[r.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != r.Version {
		return ErrConflict
	}
	r.Version++
	r.UpdatedAt = time.Now()
	cp := *r
	m.reqs[r.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*VisitRequest, int, error) {
	var result []*VisitRequest
	for _, r := range m.reqs {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.VisitType != "" && r.VisitType != f.VisitType {
			continue
		}
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockRepo) CountByStatus(_ context.Context) (StatusCounts, error) {
	var c StatusCounts
	for _, r := range m.reqs {
		switch r.Status {
		case StatusPending:
			c.Pending++
		case StatusProposed:
			c.Proposed++
		case StatusConfirmed:
			c.Confirmed++
		case StatusRejected:
			c.Rejected++
		}
		c.Total++
	}
	return c, nil
}

func (m *mockRepo) DeleteByEmployee(_ context.Context, employeeID string) (int64, error) {
	var n int64
	for id, r := range m.reqs {
		if r.EmployeeID == employeeID {
			delete(m.reqs, id)
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) *VisitRequest {
	t.Helper()
	r, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return r
}

func periodicInput(employeeID string) CreateInput {
	return CreateInput{
		EmployeeID:   employeeID,
		EmployeeName: "Marie Durand",
		VisitType:    VisitPeriodique,
		DesiredDate:  "2026-10-01",
		DesiredTime:  "09:00",
	}
}

// -- Create --

func TestCreateStartsPending(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))

	if r.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", r.Status)
	}
	if r.Modality != ModalityPresentiel {
		t.Errorf("modality = %s, want default PRESENTIEL", r.Modality)
	}
	if r.PermanentlyRejected {
		t.Error("new request must not be permanently rejected")
	}
	if len(r.ProposalHistory) != 0 {
		t.Errorf("history len = %d, want 0", len(r.ProposalHistory))
	}
	if r.Version != 1 {
		t.Errorf("version = %d, want 1", r.Version)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing employee", CreateInput{VisitType: VisitPeriodique, DesiredDate: "2026-10-01", DesiredTime: "09:00"}},
		{"unknown visit type", CreateInput{EmployeeID: "E1", VisitType: "TELEPATHIE", DesiredDate: "2026-10-01", DesiredTime: "09:00"}},
		{"spontaneous without motif", CreateInput{EmployeeID: "E1", VisitType: VisitSpontanee, DesiredDate: "2026-10-01", DesiredTime: "09:00"}},
		{"bad date", CreateInput{EmployeeID: "E1", VisitType: VisitPeriodique, DesiredDate: "01/10/2026", DesiredTime: "09:00"}},
		{"bad time", CreateInput{EmployeeID: "E1", VisitType: VisitPeriodique, DesiredDate: "2026-10-01", DesiredTime: "9am"}},
		{"unknown modality", CreateInput{EmployeeID: "E1", VisitType: VisitPeriodique, DesiredDate: "2026-10-01", DesiredTime: "09:00", Modality: "HOLOGRAM"}},
		{"reprise details on non-reprise", CreateInput{EmployeeID: "E1", VisitType: VisitPeriodique, DesiredDate: "2026-10-01", DesiredTime: "09:00", Reprise: &RepriseDetails{Category: "maladie"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateSpontaneousWithoutSlot(t *testing.T) {
	svc, _ := newTestService()

	r, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: "E100",
		VisitType:  VisitSpontanee,
		Motif:      "persistent headaches since the workshop move",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", r.Status)
	}
	if r.DesiredDate != "" || r.DesiredTime != "" {
		t.Errorf("desired slot = %q %q, want empty", r.DesiredDate, r.DesiredTime)
	}

	// A supplied slot still has to parse.
	_, err = svc.Create(context.Background(), CreateInput{
		EmployeeID:  "E101",
		VisitType:   VisitSpontanee,
		Motif:       "back pain",
		DesiredDate: "01/10/2026",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

// brokenOpenLookupRepo fails the open-request lookup with an infrastructure
// error rather than ErrNotFound.
type brokenOpenLookupRepo struct {
	*mockRepo
}

func (r *brokenOpenLookupRepo) GetOpenByEmployee(context.Context, string) (*VisitRequest, error) {
	return nil, errors.New("connection refused")
}

func TestCreateSurfacesOpenLookupFailure(t *testing.T) {
	svc := NewService(&brokenOpenLookupRepo{newMockRepo()}, zerolog.Nop())

	_, err := svc.Create(context.Background(), periodicInput("E001"))
	if err == nil {
		t.Fatal("expected error from failed open-request lookup")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Errorf("err = %v, want the repo error, not a ValidationError", err)
	}
}

func TestCreateBlocksSecondOpenRequest(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, periodicInput("E001"))

	_, err := svc.Create(context.Background(), periodicInput("E001"))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for open request", err)
	}
}

func TestCreateAllowedAfterConfirmation(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))
	if _, err := svc.DirectConfirm(context.Background(), r.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel}); err != nil {
		t.Fatalf("DirectConfirm: %v", err)
	}

	if _, err := svc.Create(context.Background(), periodicInput("E001")); err != nil {
		t.Fatalf("confirmed request must not block a new one: %v", err)
	}
}

// -- Direct confirm --

func TestDirectConfirm(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))

	out, err := svc.DirectConfirm(context.Background(), r.ID, ConfirmInput{
		Date: "2026-10-02", Time: "10:30", Modality: ModalityDistance, Notes: "bring glasses",
	})
	if err != nil {
		t.Fatalf("DirectConfirm: %v", err)
	}
	if out.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", out.Status)
	}
	if out.Confirmation == nil || out.Confirmation.Date != "2026-10-02" || out.Confirmation.Modality != ModalityDistance {
		t.Errorf("confirmation = %+v", out.Confirmation)
	}
	if out.Version != 2 {
		t.Errorf("version = %d, want 2", out.Version)
	}
}

func TestDirectConfirmRejectedForProposalOnlyTypes(t *testing.T) {
	svc, _ := newTestService()
	for _, vt := range []VisitType{VisitReprise, VisitEmbauche} {
		in := periodicInput("E-" + string(vt))
		in.VisitType = vt
		if vt == VisitReprise {
			in.Reprise = &RepriseDetails{Category: "accident_travail", HasMedicalCertificates: true}
		}
		r := mustCreate(t, svc, in)

		_, err := svc.DirectConfirm(context.Background(), r.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel})
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Errorf("%s: err = %v, want TransitionError", vt, err)
		}
	}
}

func TestDirectConfirmOnlyFromPending(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))
	if _, err := svc.ProposeSlot(context.Background(), r.ID, SlotInput{Date: "2026-10-03", Time: "11:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("ProposeSlot: %v", err)
	}

	_, err := svc.DirectConfirm(context.Background(), r.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel})
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
}

// -- Propose / accept / reject --

func TestProposeAndAccept(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))

	out, err := svc.ProposeSlot(ctx, r.ID, SlotInput{
		Date: "2026-10-05", Time: "14:00", Modality: ModalityPresentiel,
		Reason: "doctor unavailable on requested day", ProposedBy: "Dr. Leroy",
	})
	if err != nil {
		t.Fatalf("ProposeSlot: %v", err)
	}
	if out.Status != StatusProposed {
		t.Errorf("status = %s, want PROPOSED", out.Status)
	}
	if out.ActiveProposal == nil || out.ActiveProposal.Outcome != OutcomePending {
		t.Fatalf("activeProposal = %+v", out.ActiveProposal)
	}
	if out.ProposalOrdinal() != 1 {
		t.Errorf("ordinal = %d, want 1", out.ProposalOrdinal())
	}

	out, err = svc.AcceptProposal(ctx, r.ID)
	if err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}
	if out.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", out.Status)
	}
	if out.ActiveProposal != nil {
		t.Error("activeProposal must be cleared after acceptance")
	}
	if out.Confirmation == nil || out.Confirmation.Date != "2026-10-05" || out.Confirmation.Time != "14:00" {
		t.Errorf("confirmation = %+v, want proposed slot", out.Confirmation)
	}
	if out.ProposalHistory[0].Outcome != OutcomeAccepted {
		t.Errorf("history outcome = %s, want ACCEPTED", out.ProposalHistory[0].Outcome)
	}
}

func TestProposeSupersedesPendingProposal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))

	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-10-05", Time: "14:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("first propose: %v", err)
	}
	out, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-10-06", Time: "09:30", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"})
	if err != nil {
		t.Fatalf("second propose: %v", err)
	}

	if len(out.ProposalHistory) != 2 {
		t.Fatalf("history len = %d, want 2", len(out.ProposalHistory))
	}
	if out.ProposalHistory[0].Outcome != OutcomeSuperseded {
		t.Errorf("first outcome = %s, want SUPERSEDED", out.ProposalHistory[0].Outcome)
	}
	if out.ProposalHistory[1].Outcome != OutcomePending {
		t.Errorf("second outcome = %s, want PENDING", out.ProposalHistory[1].Outcome)
	}
	if out.ActiveProposal.ProposedDate != "2026-10-06" {
		t.Errorf("activeProposal date = %s, want 2026-10-06", out.ActiveProposal.ProposedDate)
	}
}

func TestRejectProposal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))
	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-10-05", Time: "14:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("ProposeSlot: %v", err)
	}

	out, err := svc.RejectProposal(ctx, r.ID, "on leave that week")
	if err != nil {
		t.Fatalf("RejectProposal: %v", err)
	}
	if out.Status != StatusRejected {
		t.Errorf("status = %s, want REJECTED", out.Status)
	}
	if out.PermanentlyRejected {
		t.Error("a fresh rejection must not be permanent")
	}
	if out.Rejection == nil || out.Rejection.Reason != "on leave that week" {
		t.Errorf("rejection = %+v", out.Rejection)
	}
	if out.ProposalHistory[0].Outcome != OutcomeRejected {
		t.Errorf("history outcome = %s, want REJECTED", out.ProposalHistory[0].Outcome)
	}
	if out.ActiveProposal != nil {
		t.Error("activeProposal must be cleared after rejection")
	}
}

func TestAcceptRequiresActiveProposal(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))

	_, err := svc.AcceptProposal(context.Background(), r.ID)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
	_, err = svc.RejectProposal(context.Background(), r.ID, "")
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
}

func TestProposeBlockedWhenConfirmed(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))
	if _, err := svc.DirectConfirm(context.Background(), r.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel}); err != nil {
		t.Fatalf("DirectConfirm: %v", err)
	}

	_, err := svc.ProposeSlot(context.Background(), r.ID, SlotInput{Date: "2026-10-05", Time: "14:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"})
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
}

// -- Rejection branch --

func rejectedRequest(t *testing.T, svc *Service) *VisitRequest {
	t.Helper()
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))
	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-10-05", Time: "14:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("ProposeSlot: %v", err)
	}
	out, err := svc.RejectProposal(ctx, r.ID, "does not suit")
	if err != nil {
		t.Fatalf("RejectProposal: %v", err)
	}
	return out
}

func TestReproposeAfterRejection(t *testing.T) {
	svc, _ := newTestService()
	r := rejectedRequest(t, svc)

	out, err := svc.ProposeSlot(context.Background(), r.ID, SlotInput{Date: "2026-10-08", Time: "08:30", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"})
	if err != nil {
		t.Fatalf("re-propose: %v", err)
	}
	if out.Status != StatusProposed {
		t.Errorf("status = %s, want PROPOSED", out.Status)
	}
	if out.Rejection != nil {
		t.Error("rejection must be cleared when leaving REJECTED")
	}
	if out.ProposalOrdinal() != 2 {
		t.Errorf("ordinal = %d, want 2", out.ProposalOrdinal())
	}
}

func TestProposeAfterRejectionAutoConfirms(t *testing.T) {
	svc, _ := newTestService()
	r := rejectedRequest(t, svc)

	out, err := svc.ProposeAfterRejection(context.Background(), r.ID, SlotInput{
		Date: "2026-10-09", Time: "15:00", Modality: ModalityDistance,
		Reason: "agreed by phone", ProposedBy: "Dr. Leroy",
	})
	if err != nil {
		t.Fatalf("ProposeAfterRejection: %v", err)
	}
	if out.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", out.Status)
	}
	if out.Confirmation == nil || out.Confirmation.Date != "2026-10-09" || out.Confirmation.Modality != ModalityDistance {
		t.Errorf("confirmation = %+v", out.Confirmation)
	}
	last := out.ProposalHistory[len(out.ProposalHistory)-1]
	if last.Outcome != OutcomeAccepted {
		t.Errorf("last outcome = %s, want ACCEPTED", last.Outcome)
	}
	if out.Rejection != nil {
		t.Error("rejection must be cleared on confirmation")
	}
}

func TestProposeAfterRejectionOnlyFromRejected(t *testing.T) {
	svc, _ := newTestService()
	r := mustCreate(t, svc, periodicInput("E001"))

	_, err := svc.ProposeAfterRejection(context.Background(), r.ID, SlotInput{Date: "2026-10-09", Time: "15:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"})
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransitionError", err)
	}
}

func TestMaintainRejectedIsTerminal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r := rejectedRequest(t, svc)

	out, err := svc.MaintainRejected(ctx, r.ID, "medically not indicated")
	if err != nil {
		t.Fatalf("MaintainRejected: %v", err)
	}
	if !out.PermanentlyRejected || out.Status != StatusRejected {
		t.Errorf("got status=%s permanent=%v", out.Status, out.PermanentlyRejected)
	}
	if out.Rejection == nil || out.Rejection.Note != "medically not indicated" {
		t.Errorf("rejection = %+v", out.Rejection)
	}

	var te *TransitionError
	if _, err := svc.MaintainRejected(ctx, r.ID, "again"); !errors.As(err, &te) {
		t.Errorf("second maintain: err = %v, want TransitionError", err)
	}
	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-10-10", Time: "09:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); !errors.As(err, &te) {
		t.Errorf("propose after maintain: err = %v, want TransitionError", err)
	}
	if !te.PermanentlyRejected {
		t.Error("transition error must carry the permanent flag")
	}
}

func TestNewRequestAllowedAfterPermanentRejection(t *testing.T) {
	svc, _ := newTestService()
	r := rejectedRequest(t, svc)
	if _, err := svc.MaintainRejected(context.Background(), r.ID, ""); err != nil {
		t.Fatalf("MaintainRejected: %v", err)
	}

	if _, err := svc.Create(context.Background(), periodicInput("E001")); err != nil {
		t.Fatalf("permanently rejected request must not block a new one: %v", err)
	}
}

// -- Reset --

func TestResetEmployeeRequests(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))
	mustCreate(t, svc, periodicInput("E002"))

	if err := svc.ResetEmployeeRequests(ctx, "E001"); err != nil {
		t.Fatalf("ResetEmployeeRequests: %v", err)
	}
	if _, err := svc.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after reset: err = %v, want ErrNotFound", err)
	}
	if len(repo.reqs) != 1 {
		t.Errorf("other employees' requests must survive, %d left", len(repo.reqs))
	}

	if err := svc.ResetEmployeeRequests(ctx, ""); err == nil {
		t.Error("empty employeeId must fail validation")
	}
}

// -- Counts --

func TestCountByStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, periodicInput("E001"))
	r2 := mustCreate(t, svc, periodicInput("E002"))
	if _, err := svc.DirectConfirm(ctx, r2.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel}); err != nil {
		t.Fatalf("DirectConfirm: %v", err)
	}

	c, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if c.Pending != 1 || c.Confirmed != 1 || c.Total != 2 {
		t.Errorf("counts = %+v", c)
	}
}

// -- Concurrency --

// racingRepo bumps the stored version between the service's read and write,
// simulating a concurrent writer winning the race.
type racingRepo struct{ *mockRepo }

func (r *racingRepo) GetByID(ctx context.Context, id uuid.UUID) (*VisitRequest, error) {
	req, err := r.mockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.reqs[id].Version++
	return req, nil
}

func TestStaleWriteSurfacesConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(&racingRepo{repo}, zerolog.Nop())
	ctx := context.Background()
	r := mustCreate(t, svc, periodicInput("E001"))

	_, err := svc.DirectConfirm(ctx, r.ID, ConfirmInput{Date: "2026-10-02", Time: "10:00", Modality: ModalityPresentiel})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

// -- Full negotiation --

func TestNegotiationRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := periodicInput("E042")
	in.VisitType = VisitReprise
	in.Reprise = &RepriseDetails{Category: "maladie_professionnelle", Details: "3 months off", HasMedicalCertificates: true}
	r := mustCreate(t, svc, in)

	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-11-02", Time: "09:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("propose #1: %v", err)
	}
	if _, err := svc.RejectProposal(ctx, r.ID, "physio appointment"); err != nil {
		t.Fatalf("reject #1: %v", err)
	}
	if _, err := svc.ProposeSlot(ctx, r.ID, SlotInput{Date: "2026-11-04", Time: "11:00", Modality: ModalityPresentiel, ProposedBy: "Dr. Leroy"}); err != nil {
		t.Fatalf("propose #2: %v", err)
	}
	out, err := svc.AcceptProposal(ctx, r.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if out.Status != StatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", out.Status)
	}
	if len(out.ProposalHistory) != 2 {
		t.Fatalf("history len = %d, want 2", len(out.ProposalHistory))
	}
	if out.ProposalHistory[0].Outcome != OutcomeRejected || out.ProposalHistory[1].Outcome != OutcomeAccepted {
		t.Errorf("history outcomes = %s, %s", out.ProposalHistory[0].Outcome, out.ProposalHistory[1].Outcome)
	}
	if out.Confirmation.Date != "2026-11-04" || out.Confirmation.Time != "11:00" {
		t.Errorf("confirmation = %+v", out.Confirmation)
	}
	// Five writes happened: create + four transitions.
	if out.Version != 5 {
		t.Errorf("version = %d, want 5", out.Version)
	}
}
