package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/taskq"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

const orderAcceptedDetail = "Order is being processed. You will receive a notification when it is complete."

func registerOrderRoutes() {
	auth := webserver.Auth()
	webserver.ApiPOST("/order", createOrder, auth)
	webserver.ApiGET("/order/tasks", listOrderTasks, auth)
}

// createOrder POST /order queues the checkout and answers 202 whatever the
// cart holds; the outcome reaches the user by email.
func createOrder(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user", nil)
	}
	taskID, err := GetAppContext(c).OrderQueue().EnqueueOrder(userID)
	if errors.Is(err, taskq.ErrQueueFull) {
		zap.L().Warn("order queue is full", zap.Int64("user_id", userID))
		return fail(c, http.StatusServiceUnavailable, "QUEUE_BUSY", "Too many orders in progress, try again later", nil)
	}
	if err != nil {
		zap.L().Error("enqueue order failed", zap.Int64("user_id", userID), zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "Order queue is unavailable", nil)
	}
	c.Response().Header().Set("X-Task-Id", taskID)
	return c.JSON(http.StatusAccepted, map[string]string{"detail": orderAcceptedDetail})
}

// listOrderTasks GET /order/tasks returns the caller's recent checkout results
func listOrderTasks(c echo.Context) error {
	userID, err := webserver.CurrentUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user", nil)
	}
	logs, err := GetAppContext(c).TaskLogs().ListByUser(c.Request().Context(), userID, 20)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order tasks", err.Error())
	}
	if logs == nil {
		logs = []*domain.OrderTaskLog{}
	}
	return ok(c, logs)
}
