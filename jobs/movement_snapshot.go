package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-mes/meridian-mes/internal/export"
	"github.com/meridian-mes/meridian-mes/internal/movement"
	"github.com/meridian-mes/meridian-mes/internal/search"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

// Snapshotter writes the four movement screens to dated workbooks so the
// day's registered movements survive as files even if rows are amended or
// soft-deleted later.
type Snapshotter struct {
	logger  *slog.Logger
	service *movement.Service
	dir     string
}

func NewSnapshotter(logger *slog.Logger, service *movement.Service, dir string) *Snapshotter {
	return &Snapshotter{logger: logger, service: service, dir: dir}
}

var snapshotScreens = []struct {
	subject   movement.Subject
	direction movement.Direction
	title     string
}{
	{movement.SubjectMaterial, movement.DirectionIn, "원자재_입고_등록현황"},
	{movement.SubjectMaterial, movement.DirectionOut, "원자재_출고_등록현황"},
	{movement.SubjectOrderItem, movement.DirectionIn, "수주대상품목_입고_등록현황"},
	{movement.SubjectOrderItem, movement.DirectionOut, "수주대상품목_출고_등록현황"},
}

// Handle processes TaskMovementSnapshot tasks.
func (s *Snapshotter) Handle(ctx context.Context, t *asynq.Task) error {
	var payload MovementSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	stamp := payload.ScheduledFor
	if stamp.IsZero() {
		stamp = time.Now()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	for _, screen := range snapshotScreens {
		movements, err := s.service.List(ctx, screen.subject, screen.direction, search.CriteriaName, "")
		if err != nil {
			return err
		}
		rows := make([]map[string]any, 0, len(movements))
		for _, mv := range movements {
			rows = append(rows, map[string]any{
				"number":   mv.MovementNo,
				"company":  mv.CompanyName,
				"code":     mv.ItemCode,
				"name":     mv.ItemName,
				"quantity": mv.Quantity,
				"date":     mv.Date,
			})
		}
		workbook, err := export.BuildWorkbook(export.Sheet{
			Title: screen.title,
			Columns: []export.Column{
				{Key: "number", Label: "번호", Kind: export.KindText},
				{Key: "company", Label: "업체명", Kind: export.KindText},
				{Key: "code", Label: "품목코드", Kind: export.KindText},
				{Key: "name", Label: "품목명", Kind: export.KindText},
				{Key: "quantity", Label: "수량", Kind: export.KindNumber},
				{Key: "date", Label: "일자", Kind: export.KindDate},
			},
			Rows: rows,
		})
		if err != nil {
			return err
		}
		name := screen.title + "_" + stamp.Format("20060102") + ".xlsx"
		path := filepath.Join(s.dir, name)
		if err := workbook.SaveAs(path); err != nil {
			return err
		}
		s.logger.Info("movement snapshot written", "file", path, "rows", len(rows))
	}
	return nil
}

// NewIdempotencyCleanupHandler prunes idempotency keys past their retention.
func NewIdempotencyCleanupHandler(logger *slog.Logger, store *shared.IdempotencyStore) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := time.Duration(payload.RetentionHours) * time.Hour
		if retention <= 0 {
			retention = 48 * time.Hour
		}
		if err := store.Cleanup(ctx, retention); err != nil {
			return err
		}
		logger.Info("idempotency keys pruned", "retention", retention.String())
		return nil
	}
}
