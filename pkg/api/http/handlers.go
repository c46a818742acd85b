package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/application/actions"
	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/pkg/ports"
)

// LoadAllRequest represents a Load All submission
type LoadAllRequest struct {
	User      string                 `json:"user"`
	Scope     map[string]string      `json:"scope"`
	Overrides map[string]interface{} `json:"overrides"`
}

// TabResponse represents one tab descriptor
type TabResponse struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Endpoint string `json:"endpoint,omitempty"`
	Order    int    `json:"order"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	current := s.orchestrator.Current()

	checks := gin.H{
		"orchestrator": string(current.Status),
	}
	healthy := true

	if s.prober != nil {
		gateway := s.prober.Status()
		checks["gateway"] = gateway
		healthy = gateway.Healthy
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}

// handleLoadAll triggers one Load All execution. The call blocks until the
// batch finishes; per-tab progress streams over the WebSocket endpoint
// while it runs, and an abort can arrive on a separate request.
func (s *Server) handleLoadAll(c *gin.Context) {
	var req LoadAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.logger.Error("invalid request", zap.Error(err))
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: err.Error(),
				},
			})
			return
		}
	}

	summary, err := s.orchestrator.RunLoadAll(c.Request.Context(), ports.StartRequest{
		User:      req.User,
		Scope:     req.Scope,
		Overrides: req.Overrides,
	})

	if errors.Is(err, domain.ErrExecutionInProgress) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{
				Code:    "EXECUTION_IN_PROGRESS",
				Message: err.Error(),
			},
		})
		return
	}

	if err != nil {
		// Batch-level start failure: zero tabs processed.
		c.JSON(http.StatusBadGateway, gin.H{
			"error": ErrorDetail{
				Code:    "START_FAILED",
				Message: err.Error(),
			},
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleListExecutions lists persisted execution snapshots
func (s *Server) handleListExecutions(c *gin.Context) {
	snapshots, err := s.orchestrator.ListExecutions(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list executions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORAGE_ERROR",
				Message: "Failed to list executions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"executions": snapshots,
		"total":      len(snapshots),
	})
}

// handleGetExecution returns an execution snapshot. The id "current"
// resolves to the in-memory state.
func (s *Server) handleGetExecution(c *gin.Context) {
	executionID := c.Param("id")

	if executionID == "current" {
		c.JSON(http.StatusOK, s.orchestrator.Current())
		return
	}

	snapshot, err := s.orchestrator.GetExecution(c.Request.Context(), executionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Execution not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// handleAbort requests cancellation of the current execution. Aborting an
// already-finished execution is a harmless no-op.
func (s *Server) handleAbort(c *gin.Context) {
	executionID := c.Param("id")

	current := s.orchestrator.Current()
	if executionID != "current" && executionID != current.ExecutionID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Execution is not current",
			},
		})
		return
	}

	snapshot := s.orchestrator.Abort()
	c.JSON(http.StatusOK, gin.H{
		"execution_id": snapshot.ExecutionID,
		"status":       snapshot.Status,
	})
}

// handleListTabs lists the tab registry in display order
func (s *Server) handleListTabs(c *gin.Context) {
	tabs := s.registry.All()

	responses := make([]TabResponse, len(tabs))
	for i, tab := range tabs {
		responses[i] = TabResponse{
			Name:     tab.Name,
			Title:    tab.Title,
			Endpoint: tab.Endpoint,
			Order:    tab.Order,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tabs":  responses,
		"total": len(responses),
	})
}

// handleGetTab returns a single tab descriptor
func (s *Server) handleGetTab(c *gin.Context) {
	name := c.Param("name")

	tab, err := s.registry.Lookup(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, TabResponse{
		Name:     tab.Name,
		Title:    tab.Title,
		Endpoint: tab.Endpoint,
		Order:    tab.Order,
	})
}

// handleActionForm returns the schema-driven form description for an action
func (s *Server) handleActionForm(c *gin.Context) {
	name := c.Param("name")

	action, ok := s.dispatcher.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Action not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":  action.Name,
		"widgets": actions.BuildForm(action.Schema),
	})
}

// handleSubmitAction validates and submits action parameters. Validation
// failures are returned to the user; the backend is never called for them.
func (s *Server) handleSubmitAction(c *gin.Context) {
	name := c.Param("name")

	if _, ok := s.dispatcher.Lookup(name); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Action not found",
			},
		})
		return
	}

	var raw map[string]interface{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: err.Error(),
				},
			})
			return
		}
	}

	response, err := s.dispatcher.Submit(c.Request.Context(), name, raw)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: ErrorDetail{
					Code:    "VALIDATION_FAILED",
					Message: validationErr.Error(),
					Details: validationErr.Fields,
				},
			})
			return
		}

		var gatewayErr *domain.GatewayError
		if errors.As(err, &gatewayErr) {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error: ErrorDetail{
					Code:    "GATEWAY_ERROR",
					Message: gatewayErr.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "SUBMISSION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.Data(http.StatusOK, "application/json", response)
}
