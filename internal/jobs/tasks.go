package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	// TaskOrderFulfill moves a paid order to fulfilled.
	TaskOrderFulfill = "order:fulfill"
	// TaskReportRefresh rebuilds the cached sales report.
	TaskReportRefresh = "report:refresh"

	// ReportRefreshCronSpec rebuilds the report every 15 minutes so the
	// dashboard stays warm even without traffic.
	ReportRefreshCronSpec = "*/15 * * * *"
)

type OrderFulfillPayload struct {
	OrderID uint `json:"order_id"`
}

func NewOrderFulfillTask(orderID uint) (*asynq.Task, error) {
	data, err := json.Marshal(OrderFulfillPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderFulfill, data), nil
}

func NewReportRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskReportRefresh, nil)
}
