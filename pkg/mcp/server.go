package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"smellsense/internal/ensemble"
	"smellsense/internal/smells"
	"smellsense/internal/store"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Classifier is the part of the service layer exposed as tools
type Classifier interface {
	Classify(ctx context.Context, in unit.Input, save bool) (*ensemble.Verdict, *store.Record, error)
	Recent(ctx context.Context, limit int) ([]*store.Record, error)
}

// SmellServer exposes smell classification over the Model Context Protocol
type SmellServer struct {
	server     *mcp.Server
	classifier Classifier
	logger     *zap.Logger
	handler    *mcp.StreamableHTTPHandler
}

type ClassifySmellParams struct {
	Code     string `json:"code" jsonschema:"the source code of one class, function or snippet"`
	Language string `json:"language,omitempty" jsonschema:"java, python, go, javascript or typescript; detected when omitted"`
	Path     string `json:"path,omitempty" jsonschema:"file path used for language detection and history"`
	Save     bool   `json:"save,omitempty" jsonschema:"record the verdict in the history store"`
}

type SmellHistoryParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of verdicts to return, newest first (default 10)"`
}

func NewSmellServer(classifier Classifier, logger *zap.Logger) *SmellServer {
	server := &SmellServer{
		classifier: classifier,
		logger:     logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "smellsense",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "classifySmell",
		Description: "Classify a code unit into exactly one code smell (or Clean). Returns the primary smell, a confidence percentage, secondary smells and the rationale",
	}, server.handleClassifySmell)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "listSmells",
		Description: "List the smell taxonomy in priority order",
	}, server.handleListSmells)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "smellHistory",
		Description: "Return recently recorded verdicts, newest first",
	}, server.handleSmellHistory)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func (s *SmellServer) handleClassifySmell(ctx context.Context, req *mcp.CallToolRequest, args ClassifySmellParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling classifySmell request",
		zap.String("language", args.Language),
		zap.Int("bytes", len(args.Code)))

	if strings.TrimSpace(args.Code) == "" {
		return errorResult("code must not be empty"), nil, nil
	}

	in := unit.Input{
		Source:   args.Code,
		Language: syntax.Language(strings.ToLower(args.Language)),
		Path:     args.Path,
	}
	verdict, record, err := s.classifier.Classify(ctx, in, args.Save)
	if err != nil && verdict == nil {
		s.logger.Error("Classification failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Classification failed: %v", err)), nil, nil
	}

	payload := map[string]any{"verdict": verdict}
	if record != nil {
		payload["record_id"] = record.ID
	}
	if err != nil {
		payload["warning"] = fmt.Sprintf("verdict not recorded: %v", err)
	}
	return jsonResult(payload)
}

func (s *SmellServer) handleListSmells(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
	var b strings.Builder
	for _, kind := range smells.AllKinds() {
		fmt.Fprintf(&b, "%2d. %s (%s, %s)\n", kind.Priority()+1, kind, kind.DisplayName(), kind.Class())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, nil, nil
}

func (s *SmellServer) handleSmellHistory(ctx context.Context, req *mcp.CallToolRequest, args SmellHistoryParams) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	records, err := s.classifier.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to read history", zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to read history: %v", err)), nil, nil
	}
	return jsonResult(map[string]any{"records": records})
}

// SetupHTTPRoutes mounts the streamable HTTP transport under /mcp
func (s *SmellServer) SetupHTTPRoutes(router *gin.Engine) {
	router.Any("/mcp", gin.WrapH(s.handler))
}

func jsonResult(payload any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
