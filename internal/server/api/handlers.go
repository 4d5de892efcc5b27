package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"helperbot/internal/llm"
	"helperbot/internal/suggestions"
	"helperbot/pkg/logger"
)

// Fixed user-facing messages. Upstream failures are absorbed into these
// rather than surfaced as non-200 statuses: availability over precision.
const (
	cooldownMessage = "I'm receiving too many questions right now. Please wait 10 seconds and try again."
	failureMessage  = "I'm having trouble connecting to the server. Please try again later."
)

// Answerer produces an answer for one question. pipeline.QAPipeline
// implements it; tests substitute a stub.
type Answerer interface {
	Run(ctx context.Context, question string) (string, error)
}

// Handler holds the per-process dependencies of the HTTP endpoints.
type Handler struct {
	answerer    Answerer
	suggestions *suggestions.Store
	log         *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(answerer Answerer, store *suggestions.Store, log *logger.Logger) *Handler {
	return &Handler{
		answerer:    answerer,
		suggestions: store,
		log:         log,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat answers one question. Model and upstream failures never produce a
// non-200 status; the error is folded into the response body, with a
// distinct message when the chat provider is rate limiting us.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.answerer.Run(c.Request.Context(), req.Message)
	if err != nil {
		h.log.Error(fmt.Sprintf("Chat failed: %v", err))
		if errors.Is(err, llm.ErrRateLimited) {
			c.JSON(http.StatusOK, chatResponse{Response: cooldownMessage})
			return
		}
		c.JSON(http.StatusOK, chatResponse{Response: failureMessage})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: answer})
}

// Suggestions returns the starter-question list. Always 200; a broken
// backing file degrades to an empty list.
func (h *Handler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.suggestions.Load()})
}
