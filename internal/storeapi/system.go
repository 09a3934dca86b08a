package storeapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/taskq"
	"github.com/talkincode/storefront/internal/webserver"
	"github.com/talkincode/storefront/pkg/metrics"
)

type systemStatus struct {
	QueueRunning     int              `json:"queue_running"`
	OrderTaskSuccess int64            `json:"order_task_success"`
	OrderTaskFailure int64            `json:"order_task_failure"`
	Gauges           map[string]int64 `json:"gauges"`
}

var statusGauges = []string{"system_cpuuse", "system_memuse", "storefront_cpuuse", "storefront_memuse"}

func registerSystemRoutes() {
	webserver.ApiGET("/system/status", getSystemStatus, webserver.Auth())
}

// getSystemStatus reports queue load, task counters and the latest
// monitor gauges recorded in the last five minutes.
func getSystemStatus(c echo.Context) error {
	status := systemStatus{
		OrderTaskSuccess: metrics.GetCounter(taskq.MetricOrderSuccess),
		OrderTaskFailure: metrics.GetCounter(taskq.MetricOrderFailure),
		Gauges:           map[string]int64{},
	}
	if q := GetAppContext(c).OrderQueue(); q != nil {
		status.QueueRunning = q.Running()
	}
	end := time.Now().Add(time.Second)
	start := end.Add(-5 * time.Minute)
	for _, name := range statusGauges {
		points, err := metrics.Query(name, start, end)
		if err != nil || len(points) == 0 {
			continue
		}
		status.Gauges[name] = int64(points[len(points)-1].Value)
	}
	return ok(c, status)
}
