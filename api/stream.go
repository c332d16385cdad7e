package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const streamRefreshInterval = 5 * time.Second

// streamTasks pushes the board projection as server-sent events until the
// client disconnects. EventSource cannot set headers, so the bearer token may
// also arrive as a query parameter.
func streamTasks(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			if token := c.QueryParam("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		userID, err := auth.UserIDFromAuthHeader(authHeader)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		filter := filterFromQuery(c)
		if ferr := filter.Validate(); ferr != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ferr.Error()})
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ctx := c.Request().Context()
		ticker := time.NewTicker(streamRefreshInterval)
		defer ticker.Stop()
		for {
			tasks, err := store.ListTasks(ctx, userID)
			if err == nil {
				data, _ := json.Marshal(buildProjection(tasks, filter, time.Now()))
				if _, err := c.Response().Write([]byte("data: ")); err != nil {
					return nil
				}
				if _, err := c.Response().Write(data); err != nil {
					return nil
				}
				if _, err := c.Response().Write([]byte("\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				continue
			}
		}
	}
}
