package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gogentic-mermaid/callbacks"
	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/effective-security/gogentic-mermaid/pkg/schema"
	"github.com/effective-security/gogentic-mermaid/tools"
	mermaidtool "github.com/effective-security/gogentic-mermaid/tools/mermaid"
	"github.com/effective-security/xlog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/invopop/jsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gogentic-mermaid", "server")

const (
	// HeaderChatID is the request header with the ID of the calling chat,
	// when missing, the request ID is used
	HeaderChatID = "X-Chat-ID"
	// HeaderRequestID is the request and response header with the request ID
	HeaderRequestID = fiber.HeaderXRequestID
	// HeaderToolCalls is the response header with the number of the tool calls
	HeaderToolCalls = "X-Tool-Calls"
	// HeaderToolCallsFailed is the response header with the number of failed tool calls
	HeaderToolCallsFailed = "X-Tool-Calls-Failed"

	localRequestID = "requestid"
)

// Option configures the Server
type Option func(*Server)

// WithCallback adds the tool callback, e.g. callbacks.Printer
func WithCallback(cb tools.Callback) Option {
	return func(s *Server) {
		s.callback.Add(cb)
	}
}

// Server exposes the tools over HTTP and serves the rendered artifacts
// from the storage root under the public prefix.
type Server struct {
	cfg      *Config
	registry *tools.Registry
	tool     *mermaidtool.Tool

	scratchpad *callbacks.Scratchpad
	callback   *callbacks.Fanout
	app        *fiber.App
}

// New returns Server
func New(cfg *Config, renderer mermaidtool.Renderer, opts ...Option) (*Server, error) {
	c := cfg.WithDefaults()

	tool, err := mermaidtool.New(renderer)
	if err != nil {
		return nil, err
	}
	provider, err := mermaidtool.NewProvider(renderer)
	if err != nil {
		return nil, err
	}
	registry := tools.NewRegistry()
	if err = registry.Register(provider); err != nil {
		return nil, err
	}

	scratchpad := callbacks.NewScratchpad(callbacks.ModeDefault)
	s := &Server{
		cfg:        c,
		registry:   registry,
		tool:       tool,
		scratchpad: scratchpad,
		callback:   callbacks.NewFanout(callbacks.NewPackageLogger(logger), scratchpad),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             c.BodyLimit,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(requestid.New(requestid.Config{
		Header:     HeaderRequestID,
		Generator:  chatmodel.NewChatID,
		ContextKey: localRequestID,
	}))
	s.app.Use(withChatContext)
	s.registerRoutes()

	// JSON for all other routes, including 404
	s.app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})
	return s, nil
}

// App returns the HTTP handler
func (s *Server) App() *fiber.App {
	return s.app
}

// Registry returns the tools registry
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Listen serves HTTP until Shutdown
func (s *Server) Listen() error {
	logger.KV(xlog.INFO,
		"status", "listen",
		"addr", s.cfg.ListenAddr,
		"storage", s.cfg.Mermaid.StorageRoot,
	)
	return s.app.Listen(s.cfg.ListenAddr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	if s.cfg.Mermaid.StorageRoot != "" {
		s.app.Static(s.cfg.Mermaid.PublicPrefix, s.cfg.Mermaid.StorageRoot, fiber.Static{
			ByteRange: true,
			MaxAge:    3600,
		})
	}

	v1 := s.app.Group("/v1")
	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	v1.Get("/tools", s.handleListTools)
	v1.Get("/tools/descriptions", s.handleToolDescriptions)
	v1.Post("/tools/:name", s.handleCallTool)
	v1.Post("/render", s.handleRender)
}

// withChatContext attaches ChatContext to the request context
func withChatContext(c *fiber.Ctx) error {
	rid, _ := c.Locals(localRequestID).(string)
	chatCtx := chatmodel.NewChatContext(c.Get(HeaderChatID), rid)
	c.SetUserContext(chatmodel.WithChatContext(c.UserContext(), chatCtx))
	c.Set(HeaderChatID, chatCtx.GetChatID())
	return c.Next()
}

// ProviderInfo is the response item of the tools list
type ProviderInfo struct {
	Name          string        `json:"name"`
	Meta          tools.AppMeta `json:"meta"`
	IsIntegration bool          `json:"isIntegration"`
	Tools         []ToolDetails `json:"tools"`
}

// ToolDetails is the tool info with the parameters schema
type ToolDetails struct {
	tools.ToolInfo
	Parameters *jsonschema.Schema `json:"parameters,omitempty"`
}

func (s *Server) handleListTools(c *fiber.Ctx) error {
	var list []ProviderInfo
	for _, p := range s.registry.Providers() {
		info := ProviderInfo{
			Name:          p.AppName(),
			Meta:          p.AppMeta(),
			IsIntegration: p.IsIntegration(),
		}
		for _, ti := range p.ToolsInfo() {
			td := ToolDetails{ToolInfo: ti}
			if tool := s.registry.Tool(ti.Name); tool != nil {
				params, err := schema.FromAny(tool.Parameters())
				if err != nil {
					return errors.WithMessagef(err, "invalid parameters of tool %s", ti.Name)
				}
				td.Parameters = params
			}
			info.Tools = append(info.Tools, td)
		}
		list = append(list, info)
	}
	return c.JSON(list)
}

// handleToolDescriptions returns the tools block for the system prompt of the calling agent
func (s *Server) handleToolDescriptions(c *fiber.Ctx) error {
	return c.SendString(tools.GetDescriptions(s.registry.Tools()...))
}

// handleCallTool returns the tool output as text, the same as provided to LLM
func (s *Server) handleCallTool(c *fiber.Ctx) error {
	name := c.Params("name")
	if s.registry.Tool(name) == nil {
		return fiber.NewError(fiber.StatusNotFound, "tool not found: "+name)
	}

	ctx := c.UserContext()
	s.scratchpad.StartRun(ctx)
	res, err := s.registry.Call(ctx, name, string(c.Body()), s.callback)
	stats, pad := s.scratchpad.EndRun(ctx)
	if stats != nil {
		c.Set(HeaderToolCalls, strconv.FormatUint(uint64(stats.ToolsCalls), 10))
		c.Set(HeaderToolCallsFailed, strconv.FormatUint(uint64(stats.ToolsCallsFailed), 10))
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_run",
			"chat_id", stats.ChatID,
			"duration", stats.Duration.String(),
			"calls", stats.ToolsCalls,
			"failed", stats.ToolsCallsFailed,
			"output_bytes", stats.OutputBytes,
			"scratchpad", string(pad),
		)
	}
	if err != nil {
		return err
	}
	return c.SendString(res)
}

func (s *Server) handleRender(c *fiber.Ctx) error {
	var req mermaidtool.RenderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
	}
	ctx := c.UserContext()
	res, err := s.tool.Run(ctx, &req)
	if err != nil {
		return renderError(err)
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "rendered",
		"chat_id", chatmodel.GetChatID(ctx),
		"url", res.URL,
	)
	return c.Status(fiber.StatusCreated).JSON(res)
}

// renderError maps the render failure to HTTP status
func renderError(err error) error {
	if errors.Is(err, mermaidtool.ErrSyntaxRequired) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	switch mermaid.KindOf(err) {
	case mermaid.KindInvalidInput:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case mermaid.KindExecution:
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case mermaid.KindEmptyOutput:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := http.StatusText(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	logger.ContextKV(c.UserContext(), xlog.WARNING,
		"status", "request_failed",
		"path", c.Path(),
		"code", code,
		"err", err.Error(),
	)

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
		},
	})
}
