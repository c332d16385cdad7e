package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, logger *log.Logger) {
	e.GET("/api/tasks", getTasks(store, auth, logger))
	e.GET("/api/tasks/stream", streamTasks(store, auth))
	e.POST("/api/tasks", postTask(store, auth))
	e.PUT("/api/tasks/:id", putTask(store, auth))
	e.POST("/api/tasks/:id/status", postTaskStatus(store, auth))
	e.DELETE("/api/tasks/:id", deleteTask(store, auth))
	e.GET("/healthz", healthz())
}

// taskView is a task plus its deadline signal, computed per request.
type taskView struct {
	domain.Task
	Due *domain.Urgency `json:"due,omitempty"`
}

type tasksResponse struct {
	Tasks  []taskView    `json:"tasks"`
	Counts domain.Counts `json:"counts"`
}

// statusChangeRequest is the body of POST /api/tasks/:id/status.
type statusChangeRequest struct {
	Status domain.Status `json:"status"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// buildProjection applies the filter and sort order and derives the urgency
// signal per visible task. Counts always cover the unfiltered collection.
func buildProjection(tasks []domain.Task, f domain.Filter, now time.Time) tasksResponse {
	visible := domain.Project(tasks, f)
	views := make([]taskView, len(visible))
	for i, t := range visible {
		views[i] = taskView{Task: t}
		if due, ok := domain.ClassifyDeadline(t.Deadline, t.Status, now); ok {
			d := due
			views[i].Due = &d
		}
	}
	return tasksResponse{Tasks: views, Counts: domain.CountByStatus(tasks)}
}

func filterFromQuery(c echo.Context) domain.Filter {
	return domain.Filter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	}
}

func getTasks(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		filter := filterFromQuery(c)
		metrics.SetFilterProvided(filter != domain.Filter{})
		if ferr := filter.Validate(); ferr != nil {
			metrics.SetErrorStage("invalid_filter")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: ferr.Error()})
			return err
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.ListTasks(ctx, userID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.String(http.StatusInternalServerError, fetchErr.Error())
			return err
		}

		resp := buildProjection(tasks, filter, time.Now())
		metrics.SetTasksReturned(len(resp.Tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, resp)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var draft domain.Draft
		if err := decodeBody(c, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.CreateTask(c.Request().Context(), userID, draft)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func putTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var draft domain.Draft
		if err := decodeBody(c, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.UpdateTask(c.Request().Context(), userID, c.Param("id"), draft)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func postTaskStatus(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var req statusChangeRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.SetTaskStatus(c.Request().Context(), userID, c.Param("id"), req.Status)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		if err := store.DeleteTask(c.Request().Context(), userID, c.Param("id")); err != nil {
			return writeStoreError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// decodeBody decodes a size-limited JSON request body, rejecting unknown
// fields.
func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, taskPayloadMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// writeStoreError maps storage errors onto HTTP statuses: missing tasks to
// 404, rejected drafts to 400, everything else to 500.
func writeStoreError(c echo.Context, err error) error {
	var nf NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: nf.Error()})
	}
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, err.Error())
}
