package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deskqueue/internal/service"
)

const healthTimeout = 2 * time.Second

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, queueSvc service.QueueService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/servicedesks/:serviceDeskId/queues", ListQueues(queueSvc))
	app.Post("/servicedesks/:serviceDeskId/queues/sync", SyncQueues(queueSvc))
	// Registered before :queueId so "snapshot" and "upstream" are not taken for queue ids.
	app.Get("/servicedesks/:serviceDeskId/queues/snapshot", GetSnapshotURL(queueSvc))
	app.Get("/servicedesks/:serviceDeskId/queues/upstream", ListUpstreamQueues(queueSvc))
	app.Get("/servicedesks/:serviceDeskId/queues/:queueId", GetQueue(queueSvc))
}

// Metrics serves the Prometheus exposition format for g.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// HealthCheck godoc
// @Summary Readiness probe, pings the database
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListQueues godoc
// @Summary List the stored queues of a service desk
// @Tags queues
// @Produce json
// @Param serviceDeskId path string true "Service desk id"
// @Param limit query int false "Page size" default(10) maximum(100)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} service.QueueListResult
// @Failure 400 {object} errorPayload
// @Router /servicedesks/{serviceDeskId}/queues [get]
func ListQueues(queueSvc service.QueueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdID, ok := numericParam(c, "serviceDeskId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SERVICE_DESK_ID", "invalid service desk id")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := queueSvc.List(c.UserContext(), sdID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetQueue godoc
// @Summary Get one stored queue
// @Tags queues
// @Produce json
// @Param serviceDeskId path string true "Service desk id"
// @Param queueId path string true "Queue id"
// @Success 200 {object} model.Queue
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /servicedesks/{serviceDeskId}/queues/{queueId} [get]
func GetQueue(queueSvc service.QueueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdID, ok := numericParam(c, "serviceDeskId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SERVICE_DESK_ID", "invalid service desk id")
		}
		queueID, ok := numericParam(c, "queueId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUEUE_ID", "invalid queue id")
		}

		q, err := queueSvc.Get(c.UserContext(), sdID, queueID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(q)
	}
}

// SyncQueues godoc
// @Summary Fetch the queues of a service desk from Jira and store them
// @Tags queues
// @Produce json
// @Param serviceDeskId path string true "Service desk id"
// @Success 201 {object} model.QueueSync
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /servicedesks/{serviceDeskId}/queues/sync [post]
func SyncQueues(queueSvc service.QueueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdID, ok := numericParam(c, "serviceDeskId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SERVICE_DESK_ID", "invalid service desk id")
		}

		sync, err := queueSvc.Sync(c.UserContext(), sdID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sync)
	}
}

// GetSnapshotURL godoc
// @Summary Presigned download URL of the latest queue snapshot
// @Tags queues
// @Produce json
// @Param serviceDeskId path string true "Service desk id"
// @Success 200 {object} service.SnapshotLink
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /servicedesks/{serviceDeskId}/queues/snapshot [get]
func GetSnapshotURL(queueSvc service.QueueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdID, ok := numericParam(c, "serviceDeskId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SERVICE_DESK_ID", "invalid service desk id")
		}

		link, err := queueSvc.SnapshotURL(c.UserContext(), sdID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(link)
	}
}

// ListUpstreamQueues godoc
// @Summary List the queues Jira currently reports, without storing them
// @Tags queues
// @Produce json
// @Param serviceDeskId path string true "Service desk id"
// @Success 200 {object} service.QueueListResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /servicedesks/{serviceDeskId}/queues/upstream [get]
func ListUpstreamQueues(queueSvc service.QueueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdID, ok := numericParam(c, "serviceDeskId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SERVICE_DESK_ID", "invalid service desk id")
		}

		res, err := queueSvc.Upstream(c.UserContext(), sdID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// numericParam returns a copy of the path parameter when it is a decimal number.
// Jira identifies service desks and queues by numeric ids. The copy is safe to keep
// after the request, e.g. as a cache key.
func numericParam(c *fiber.Ctx, name string) (string, bool) {
	v := c.Params(name)
	if _, err := strconv.ParseUint(v, 10, 64); err != nil {
		return "", false
	}
	return utils.CopyString(v), true
}

func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrServiceDeskNotFound):
		return writeError(c, fiber.StatusNotFound, "SERVICE_DESK_NOT_FOUND", "service desk not found")
	case errors.Is(err, service.ErrUpstream):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "service desk unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
