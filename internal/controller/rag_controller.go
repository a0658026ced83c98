// FILE: internal/controller/rag_controller.go
// PURPOSE: HTTP surface for KB retrieval and RAG answering, including the
//          SSE thinking-event stream.

package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"strconv"

	"ai-kbchat-be/internal/dto"
	"ai-kbchat-be/internal/pkg/logger"
	"ai-kbchat-be/internal/pkg/serverutils"
	"ai-kbchat-be/pkg/rag/executor"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	RetrieveGet(ctx *fiber.Ctx) error
	Retrieve(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	StreamAnswer(ctx *fiber.Ctx) error
}

type ragController struct {
	retriever executor.Retriever
	pipeline  *executor.Pipeline
	logger    logger.ILogger
}

func NewRagController(retriever executor.Retriever, pipeline *executor.Pipeline, log logger.ILogger) IRagController {
	return &ragController{
		retriever: retriever,
		pipeline:  pipeline,
		logger:    log,
	}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Get("/retrieve", c.RetrieveGet)
	h.Post("/retrieve", c.Retrieve)
	h.Post("/answer", c.Answer)
	h.Post("/answer/stream", c.StreamAnswer)
}

// RetrieveGet serves quick retrieval checks from query parameters:
// GET /api/rag/v1/retrieve?question=...&topK=5&minScore=0.5
func (c *ragController) RetrieveGet(ctx *fiber.Ctx) error {
	req := dto.QueryRequest{
		Question: ctx.Query("question"),
		TopK:     ctx.QueryInt("topK"),
	}
	if raw := ctx.Query("minScore"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid minScore: "+raw)
		}
		req.MinScore = &score
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retriever.Retrieve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve documents", res))
}

func (c *ragController) Retrieve(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retriever.Retrieve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success retrieve documents", res))
}

// Answer runs the full pipeline without streaming and returns the final
// answer plus the documents that grounded it.
func (c *ragController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pipeline.Answer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate answer", res))
}

// StreamAnswer streams pipeline stages as server-sent events. Each event uses
// the stage name as the SSE event type and the JSON-encoded ThinkingEvent as
// data.
func (c *ragController) StreamAnswer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The fasthttp request context is recycled once this handler returns,
	// so the pipeline runs on a detached context cancelled by the stream
	// writer when the client goes away.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.pipeline.StreamAnswer(streamCtx, &req)
	if err != nil {
		cancel()
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				c.logger.Error("RagController", "Failed to encode stream event", map[string]interface{}{
					"stage": event.Stage,
					"error": err.Error(),
				})
				continue
			}

			if _, err := w.WriteString("event: " + event.Stage + "\ndata: " + string(payload) + "\n\n"); err != nil {
				return
			}
			// Flush per event so the client sees stages as they happen.
			// A flush error means the client disconnected.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
