package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/signature-redactor/internal/detection"
	"github.com/ironsheep/signature-redactor/internal/imaging"
	"github.com/ironsheep/signature-redactor/internal/pipeline"
	"github.com/ironsheep/signature-redactor/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "signature_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_info":
		return s.handleImageInfo(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "signature_detect":
		return s.handleSignatureDetect(args)
	case "signature_redact":
		return s.handleSignatureRedact(ctx, args)
	case "signature_debug":
		return s.handleSignatureDebug(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

// === Signature Handlers ===

func (s *Server) handleSignatureDetect(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Detector().Detect(img)
}

type signatureRedactArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Mode   string `json:"mode"`
}

// signatureResponse is the tool-facing summary of a pipeline run.
type signatureResponse struct {
	Found      bool                 `json:"found"`
	Mode       pipeline.Mode        `json:"mode"`
	OutputPath string               `json:"output_path,omitempty"`
	Best       *detection.Candidate `json:"best,omitempty"`
	Refined    *detection.Bounds    `json:"refined,omitempty"`
	Verdict    *vision.Verdict      `json:"verdict,omitempty"`
	Preview    *imaging.CropResult  `json:"preview,omitempty"`
}

func newSignatureResponse(res *pipeline.Result) *signatureResponse {
	out := &signatureResponse{
		Found:      res.Found,
		Mode:       res.Mode,
		OutputPath: res.OutputPath,
		Verdict:    res.Verdict,
	}
	if res.Found && res.Detection != nil {
		out.Best = res.Detection.Best
		refined := res.Detection.Refined
		out.Refined = &refined
	}
	return out
}

func (s *Server) handleSignatureRedact(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a signatureRedactArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	mode, err := pipeline.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	if mode == pipeline.ModeDetect {
		return nil, fmt.Errorf("mode detect is served by signature_debug")
	}

	img, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.pipeline.RunImage(ctx, img, mode, a.Output)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(res.OutputPath)
	return newSignatureResponse(res), nil
}

type signatureDebugArgs struct {
	Path   string  `json:"path"`
	Output string  `json:"output"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleSignatureDebug(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a signatureDebugArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.pipeline.RunImage(ctx, img, pipeline.ModeDetect, a.Output)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(res.OutputPath)

	out := newSignatureResponse(res)
	if res.Image != nil {
		b := res.Image.Bounds()
		out.Preview, err = imaging.Crop(res.Image, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, a.Scale)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// load reads an image through the cache, tagging failures as unreadable.
func (s *Server) load(path string) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrUnreadableImage, err)
	}
	return img, nil
}
