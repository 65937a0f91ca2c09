package main

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Request represents a normalization request. Transforms and Derived
// override the server defaults when set.
type Request struct {
	Text        string   `json:"text"`
	Transforms  []string `json:"transforms,omitempty"`
	Derived     []string `json:"derived,omitempty"`
	SplitParams *bool    `json:"split_params,omitempty"`
	Separator   string   `json:"separator,omitempty"`
}

// Response represents a normalization response.
type Response struct {
	Text      string   `json:"text"`
	Changed   bool     `json:"changed"`
	Templates int      `json:"templates"`
	Ignored   []string `json:"ignored,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// handler serves the HTTP endpoints.
type handler struct {
	factory *normalizer.NormalizerFactory
	cfg     template.Config
	opts    template.RenderOptions
	logger  ports.Logger
}

func newHandler(factory *normalizer.NormalizerFactory, cfg template.Config, opts template.RenderOptions, logger ports.Logger) *handler {
	return &handler{factory: factory, cfg: cfg, opts: opts, logger: logger}
}

// serve is the main fasthttp request handler
func (h *handler) serve(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "mwnav")

	switch string(ctx.Path()) {
	case "/health":
		h.handleHealthCheck(ctx)
	case "/normalize":
		h.handleNormalize(ctx)
	case "/normalizers":
		h.handleNormalizers(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		h.writeJSONError(ctx, "Not found")
	}

	h.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (h *handler) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *handler) handleNormalizers(ctx *fasthttp.RequestCtx) {
	transforms, derived := h.factory.Names()
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, map[string][]string{
		"transforms": transforms,
		"derived":    derived,
	})
}

func (h *handler) handleNormalize(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		h.writeJSONError(ctx, "Method not allowed")
		return
	}

	var req Request
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		h.writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	cfg, opts := h.cfg, h.opts
	var ignored []string
	if len(req.Transforms) > 0 || len(req.Derived) > 0 {
		cfg, ignored = h.factory.BuildConfig(req.Transforms, req.Derived)
	}
	if req.SplitParams != nil {
		opts.SplitParams = *req.SplitParams
	}
	if req.Separator != "" {
		opts.Separator = req.Separator
	}

	tokenized, store := template.Tokenize(req.Text, opts.SplitParams)
	templates := store.Len()
	template.Normalize(store, cfg)
	out := template.Untokenize(tokenized, store, opts.UntokenizeOptions)

	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, Response{
		Text:      out,
		Changed:   out != req.Text,
		Templates: templates,
		Ignored:   ignored,
	})
}

// writeJSONResponse writes a JSON response to the context
func (h *handler) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.logger.Error("Error marshaling JSON response", "error", err)
		h.writeJSONError(ctx, "Internal server error")
		return
	}
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (h *handler) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetBody(response)
}
