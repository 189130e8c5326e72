package page

import (
	"context"

	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/classify"
	"github.com/coachtui/woflo/internal/model"
)

// FilterAll lists work orders of every status.
const FilterAll = "all"

// FilterOptions are the status filters offered on the work-order page, in
// display order.
var FilterOptions = []string{
	FilterAll,
	string(model.WorkOrderTodo),
	string(model.WorkOrderInProgress),
	string(model.WorkOrderCompleted),
}

type WorkOrderAPI interface {
	ListWorkOrders(ctx context.Context, status string) ([]model.WorkOrder, error)
	CreateWorkOrder(ctx context.Context, draft model.WorkOrderDraft) (model.WorkOrder, error)
}

type WorkOrders struct {
	*Controller[model.WorkOrder]
	api WorkOrderAPI
	log *zap.Logger
}

func NewWorkOrders(api WorkOrderAPI, log *zap.Logger) *WorkOrders {
	if log == nil {
		log = zap.NewNop()
	}
	fetch := func(ctx context.Context, status string) ([]model.WorkOrder, error) {
		return api.ListWorkOrders(ctx, status)
	}
	return &WorkOrders{
		Controller: NewController[model.WorkOrder]("work-orders", fetch, log),
		api:        api,
		log:        log,
	}
}

// Filter is the active status filter, FilterAll when unfiltered.
func (w *WorkOrders) Filter() string {
	if q := w.Query(); q != "" {
		return q
	}
	return FilterAll
}

// SetFilter re-fetches with a new status filter. Unknown values go to the
// backend unchanged.
func (w *WorkOrders) SetFilter(ctx context.Context, filter string) {
	if filter == FilterAll {
		filter = ""
	}
	w.SetQuery(ctx, filter)
}

// CreateWorkOrder submits draft and re-fetches on success.
func (w *WorkOrders) CreateWorkOrder(ctx context.Context, draft model.WorkOrderDraft) Notice {
	wo, err := w.api.CreateWorkOrder(ctx, draft)
	if err != nil {
		w.log.Warn("create work order failed", zap.String("unit_id", draft.UnitID), zap.Error(err))
		return Failure("Failed to create work order", err)
	}
	w.log.Info("work order created", zap.String("work_order_id", wo.ID))
	w.Refresh(ctx)
	return Success("Work order WO-" + ShortID(wo.ID) + " created")
}

type WorkOrderStats struct {
	Total        int
	HighPriority int
	PartsReady   int
	InProgress   int
}

func WorkOrderAggregates(orders []model.WorkOrder) WorkOrderStats {
	stats := WorkOrderStats{Total: len(orders)}
	for _, wo := range orders {
		if classify.IsHighPriority(wo.Priority) {
			stats.HighPriority++
		}
		if wo.PartsReady {
			stats.PartsReady++
		}
		if wo.Status == model.WorkOrderInProgress {
			stats.InProgress++
		}
	}
	return stats
}
