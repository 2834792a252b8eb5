package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/internal/presentation/graph"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
)

// GraphURI is the resource holding the current flow graph.
const GraphURI = "atendente://graph"

// Dashboard is the part of atendente.Dashboard the MCP server needs.
type Dashboard interface {
	Refresh(ctx context.Context) (*flowgraph.Graph, error)
	Graph() *flowgraph.Graph
	ExpandAll() bool
	SetExpandAll(expand bool) (*flowgraph.Graph, error)
	Step(id domain.StepID) (domain.Step, error)
}

// StepResult is the payload of get_step.
type StepResult struct {
	ID          domain.StepID `json:"id"`
	Title       string        `json:"titulo"`
	Description string        `json:"descricao"`
	Options     []OptionInfo  `json:"opcoes"`
	Terminal    bool          `json:"terminal"`
}

// OptionInfo is one option of a step with its resolved target.
type OptionInfo struct {
	ID     string        `json:"id"`
	Title  string        `json:"titulo"`
	Target domain.StepID `json:"target"`
}

// Server exposes the flow graph of a Dashboard to MCP clients.
type Server struct {
	dash      Dashboard
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(dash Dashboard, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		dash:      dash,
		mcpServer: server.NewMCPServer("atendente-mcp", version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_flow_graph",
		mcp.WithDescription("Get the positioned flow graph (nodes with level/column/x/y, edges, dangling options) of the attendant's menus."),
		mcp.WithBoolean("expand_all", mcp.Description("Expand every reachable step instead of the first two levels")),
		mcp.WithBoolean("refresh", mcp.Description("Reload the menus from the backend first")),
	), s.handleGetFlowGraph)

	s.mcpServer.AddTool(mcp.NewTool("get_flow_mermaid",
		mcp.WithDescription("Get the flow graph as a Mermaid flowchart."),
		mcp.WithBoolean("expand_all", mcp.Description("Expand every reachable step instead of the first two levels")),
	), s.handleGetFlowMermaid)

	s.mcpServer.AddTool(mcp.NewTool("get_step",
		mcp.WithDescription("Get one menu step with its options and their target steps."),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("The step id, e.g. menu_principal")),
	), s.handleGetStep)
}

func (s *Server) graph(ctx context.Context, request mcp.CallToolRequest) (*flowgraph.Graph, error) {
	if request.GetBool("refresh", false) || s.dash.Graph() == nil {
		if _, err := s.dash.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	args := request.GetArguments()
	if _, ok := args["expand_all"]; ok {
		expand := request.GetBool("expand_all", false)
		if expand != s.dash.ExpandAll() {
			return s.dash.SetExpandAll(expand)
		}
	}
	return s.dash.Graph(), nil
}

func (s *Server) handleGetFlowGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.graph(ctx, request)
	if err != nil {
		return toolError("graph build failed", err), nil
	}
	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetFlowMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.graph(ctx, request)
	if err != nil {
		return toolError("graph build failed", err), nil
	}
	overlay := &graph.GraphOverlay{Dangling: graph.DanglingSteps(g)}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func (s *Server) handleGetStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("step_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.dash.Graph() == nil {
		if _, err := s.dash.Refresh(ctx); err != nil {
			return toolError("menus unavailable", err), nil
		}
	}

	step, err := s.dash.Step(domain.StepID(id))
	if err != nil {
		return toolError("lookup failed", err), nil
	}
	res := StepResult{
		ID:          step.ID,
		Title:       step.Title,
		Description: step.Description,
		Options:     make([]OptionInfo, len(step.Options)),
		Terminal:    len(step.Options) == 0,
	}
	if n, ok := s.dash.Graph().Node(step.ID); ok {
		res.Terminal = n.Terminal
	}
	for i, o := range step.Options {
		res.Options[i] = OptionInfo{ID: o.ID, Title: o.Title, Target: o.Target}
	}

	jsonBytes, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func toolError(msg string, err error) *mcp.CallToolResult {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotAuthenticated) {
		msg += " (run `atendente login` first)"
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Flow Graph",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g := s.dash.Graph()
	if g == nil {
		var err error
		if g, err = s.dash.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("failed to load graph: %w", err)
		}
	}
	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
