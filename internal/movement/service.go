package movement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/search"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

// dateLayouts lists the date formats a registration grid may submit.
var dateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339}

// AuditRecorder records movement mutations for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyStore guards batch submissions against replays. A rejected
// duplicate surfaces as shared.ErrIdempotencyConflict.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo        Repository
	audit       AuditRecorder
	idempotency IdempotencyStore
}

func NewService(repo Repository, audit AuditRecorder, idempotency IdempotencyStore) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idempotency}
}

// Eligible returns the source rows a registration screen offers.
func (s *Service) Eligible(ctx context.Context, subject Subject, direction Direction) ([]EligibleRow, error) {
	return s.repo.ListEligible(ctx, subject, direction)
}

// Register runs one batch submission through the registration state machine
// and commits the surviving rows atomically. The request's rows are replayed
// as cell edits, so the same eligibility and guard rules apply whether the
// rows arrive from the screen or any other client.
func (s *Service) Register(ctx context.Context, subject Subject, direction Direction, idempotencyKey string, req RegisterBatchRequest) ([]Movement, error) {
	if !subject.IsValid() || !direction.IsValid() {
		return nil, fmt.Errorf("%w: unknown movement screen", httpx.ErrValidation)
	}
	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to register", httpx.ErrValidation)
	}

	if idempotencyKey != "" && s.idempotency != nil {
		module := "movement:" + string(subject) + ":" + string(direction)
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, module); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, fmt.Errorf("%w: batch already registered", httpx.ErrConflict)
			}
			return nil, err
		}
	}

	eligible, err := s.repo.ListEligible(ctx, subject, direction)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return nil, err
	}

	batch := NewBatch(subject, direction)
	batch.Load(eligible)
	for _, row := range req.Rows {
		date, err := parseDate(row.Date)
		if err != nil {
			s.releaseKey(ctx, idempotencyKey)
			return nil, err
		}
		if err := batch.EditAmount(row.SourceID, row.Amount); err != nil {
			s.releaseKey(ctx, idempotencyKey)
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
		}
		if err := batch.EditDate(row.SourceID, date); err != nil {
			s.releaseKey(ctx, idempotencyKey)
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
		}
		if row.Remark != "" {
			if err := batch.EditRemark(row.SourceID, row.Remark); err != nil {
				s.releaseKey(ctx, idempotencyKey)
				return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
			}
		}
	}

	submission, err := batch.Validate()
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return nil, err
	}

	created, err := s.repo.CreateBatch(ctx, subject, direction, submission)
	batch.Complete(err)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		return nil, err
	}

	for _, mv := range created {
		s.recordAudit(ctx, shared.AuditLog{
			Action:   "register",
			Entity:   "movement:" + string(subject) + ":" + string(direction),
			EntityID: strconv.FormatInt(mv.ID, 10),
			Meta: map[string]any{
				"movement_no": mv.MovementNo,
				"quantity":    mv.Quantity,
				"date":        mv.Date.Format("2006-01-02"),
			},
		})
	}
	return created, nil
}

// List returns committed movements for one screen, filtered in memory by the
// search bar's (criteria, query) pair.
func (s *Service) List(ctx context.Context, subject Subject, direction Direction, criteria search.Criteria, query string) ([]Movement, error) {
	movements, err := s.repo.List(ctx, subject, direction)
	if err != nil {
		return nil, err
	}
	return search.Filter(movements, criteria, query, func(mv Movement) any {
		switch criteria {
		case search.CriteriaCompany:
			return mv.CompanyName
		case search.CriteriaCode:
			return mv.ItemCode
		case search.CriteriaNumber:
			return mv.MovementNo
		case search.CriteriaDate:
			return mv.Date
		default:
			return mv.ItemName
		}
	}), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Movement, error) {
	if id <= 0 {
		return Movement{}, fmt.Errorf("%w: invalid movement id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Amend applies a list screen's inline edit.
func (s *Service) Amend(ctx context.Context, id int64, req AmendRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid movement id", httpx.ErrValidation)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	if err := s.repo.Amend(ctx, id, req.Quantity, date, req.Remark); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditLog{
		Action:   "amend",
		Entity:   "movement",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"quantity": req.Quantity, "date": date.Format("2006-01-02")},
	})
	return nil
}

// Delete soft-deletes a movement row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid movement id", httpx.ErrValidation)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, shared.AuditLog{
		Action:   "delete",
		Entity:   "movement",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// SetProcessCompleted flips the outbound gate on an order-item LOT.
func (s *Service) SetProcessCompleted(ctx context.Context, id int64, completed bool) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid movement id", httpx.ErrValidation)
	}
	flag := "N"
	if completed {
		flag = "Y"
	}
	return s.repo.SetProcessCompleted(ctx, id, flag)
}

func (s *Service) recordAudit(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, log)
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	_ = s.idempotency.Delete(ctx, key)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", httpx.ErrValidation, s)
}
