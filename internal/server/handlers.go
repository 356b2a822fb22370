package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/letter-denoise/internal/bayes"
	"github.com/ironsheep/letter-denoise/internal/cleaner"
	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
	"github.com/ironsheep/letter-denoise/internal/models"
	"github.com/ironsheep/letter-denoise/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "denoise_clean").
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
// Tool execution errors return a JSON-RPC error response with CodeToolFailed.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, CodeToolFailed, "Tool execution failed", err.Error())
	}

	return reply(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "denoise_binarize":
		return s.handleBinarize(args)
	case "denoise_features":
		return s.handleFeatures(args)
	case "denoise_posterior":
		return s.handlePosterior(args)
	case "denoise_clean":
		return s.handleClean(args)
	case "denoise_ocr":
		return s.handleOCR(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadGrid binarizes path, using the configured pre-blur unless blur is set.
func (s *Server) loadGrid(path string, blur *float64) (*imaging.Grid, error) {
	radius := s.cfg.Clean.PreBlur
	if blur != nil {
		radius = *blur
	}
	if radius < 0 {
		return nil, fmt.Errorf("blur radius must not be negative, got %g", radius)
	}
	return s.cache.LoadGrid(path, radius)
}

func inkPixel(g *imaging.Grid, row, col int) (imaging.Pixel, error) {
	p := imaging.Pixel{Row: row, Col: col}
	if !g.InBounds(row, col) {
		return p, fmt.Errorf("pixel (%d,%d) outside %dx%d image: %w", row, col, g.Rows(), g.Cols(), imaging.ErrOutOfBounds)
	}
	if !g.IsInk(row, col) {
		return p, fmt.Errorf("pixel (%d,%d) is background", row, col)
	}
	return p, nil
}

// === Binarization ===

type binarizeArgs struct {
	Path         string   `json:"path"`
	Blur         *float64 `json:"blur"`
	IncludeImage bool     `json:"include_image"`
}

type binarizeResult struct {
	*imaging.GridInfo
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (s *Server) handleBinarize(args json.RawMessage) (interface{}, error) {
	var a binarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	g, err := s.loadGrid(a.Path, a.Blur)
	if err != nil {
		return nil, err
	}
	info := imaging.NewGridInfo(g, a.Path)
	res := binarizeResult{GridInfo: info}
	if a.IncludeImage {
		if res.ImageBase64, err = imaging.EncodePNGBase64(g.ToImage()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// === Features ===

type featuresArgs struct {
	Path   string `json:"path"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Layout string `json:"layout"`
}

type featuresResult struct {
	Layout  string             `json:"layout"`
	Pixel   imaging.Pixel      `json:"pixel"`
	Values  map[string]float64 `json:"values"`
	Ordered []float64          `json:"ordered"`
}

func (s *Server) handleFeatures(args json.RawMessage) (interface{}, error) {
	var a featuresArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	name := a.Layout
	if name == "" {
		name = s.cfg.Features.Layout
	}
	layout, err := features.LayoutByName(name)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGrid(a.Path, nil)
	if err != nil {
		return nil, err
	}
	p, err := inkPixel(g, a.Row, a.Col)
	if err != nil {
		return nil, err
	}
	ex := features.NewExtractor(layout, s.cfg.Extent(), s.cfg.Features.WindowHalfWidth)
	v, err := ex.Extract(g, p)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(v))
	for i, c := range layout.Columns {
		values[c.Name] = v[i]
	}
	return featuresResult{Layout: layout.Name, Pixel: p, Values: values, Ordered: v}, nil
}

// === Posterior ===

type posteriorArgs struct {
	Path  string `json:"path"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Model string `json:"model"`
}

type posteriorResult struct {
	Model       string        `json:"model"`
	Pixel       imaging.Pixel `json:"pixel"`
	Probability float64       `json:"probability"`
	Degenerate  bool          `json:"degenerate,omitempty"`
	Threshold   float64       `json:"threshold"`
	Label       string        `json:"label"`
}

func (s *Server) handlePosterior(args json.RawMessage) (interface{}, error) {
	var a posteriorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sel, err := models.Open(s.cfg, a.Model)
	if err != nil {
		return nil, err
	}
	g, err := s.loadGrid(a.Path, nil)
	if err != nil {
		return nil, err
	}
	p, err := inkPixel(g, a.Row, a.Col)
	if err != nil {
		return nil, err
	}

	res := posteriorResult{Model: sel.Kind, Pixel: p, Threshold: sel.Threshold}
	prob, err := sel.Classifier.ProbabilityIsLetter(g, p)
	switch {
	case errors.Is(err, bayes.ErrDegenerateScore):
		res.Degenerate = true
	case err != nil:
		return nil, err
	default:
		res.Probability = prob
	}
	res.Label = imaging.Letter.String()
	if res.Degenerate || res.Probability <= sel.Threshold {
		res.Label = imaging.Noise.String()
	}
	return res, nil
}

// === Cleaning ===

type cleanArgs struct {
	Path      string   `json:"path"`
	Model     string   `json:"model"`
	Output    string   `json:"output"`
	Threshold *float64 `json:"threshold"`
	Workers   int      `json:"workers"`
	Blur      *float64 `json:"blur"`
}

type cleanResult struct {
	Model       string  `json:"model"`
	Threshold   float64 `json:"threshold"`
	Examined    int     `json:"examined"`
	Removed     int     `json:"removed"`
	Degenerate  int     `json:"degenerate"`
	InkBefore   int     `json:"ink_before"`
	InkAfter    int     `json:"ink_after"`
	Output      string  `json:"output,omitempty"`
	ImageBase64 string  `json:"image_base64,omitempty"`
}

func (s *Server) clean(path, model string, threshold *float64, workers int, blur *float64) (*cleaner.Result, *models.Selection, *imaging.Grid, error) {
	sel, err := models.Open(s.cfg, model)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := cleaner.Options{Threshold: sel.Threshold, Workers: s.cfg.Clean.Workers}
	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			return nil, nil, nil, fmt.Errorf("threshold %g outside [0,1]", *threshold)
		}
		opts.Threshold = *threshold
	}
	if workers > 0 {
		opts.Workers = workers
	}
	g, err := s.loadGrid(path, blur)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := cleaner.New(sel.Classifier, opts).Clean(context.Background(), g)
	if err != nil {
		return nil, nil, nil, err
	}
	sel.Threshold = opts.Threshold
	return res, sel, g, nil
}

func (s *Server) handleClean(args json.RawMessage) (interface{}, error) {
	var a cleanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, sel, g, err := s.clean(a.Path, a.Model, a.Threshold, a.Workers, a.Blur)
	if err != nil {
		return nil, err
	}
	out := cleanResult{
		Model:      sel.Kind,
		Threshold:  sel.Threshold,
		Examined:   res.Examined,
		Removed:    res.Removed,
		Degenerate: res.Degenerate,
		InkBefore:  g.InkCount(),
		InkAfter:   res.Image.InkCount(),
	}
	if a.Output != "" {
		if err := imaging.SaveGrid(res.Image, a.Output); err != nil {
			return nil, err
		}
		out.Output = a.Output
	} else if out.ImageBase64, err = imaging.EncodePNGBase64(res.Image.ToImage()); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("path", a.Path).
		Str("model", sel.Kind).
		Int("examined", res.Examined).
		Int("removed", res.Removed).
		Msg("image cleaned")
	return out, nil
}

// === OCR ===

type ocrArgs struct {
	Path      string `json:"path"`
	Clean     *bool  `json:"clean"`
	Model     string `json:"model"`
	Language  string `json:"language"`
	Whitelist string `json:"whitelist"`
}

type ocrResult struct {
	*ocr.Result
	Cleaned bool `json:"cleaned"`
	Removed int  `json:"removed,omitempty"`
}

func (s *Server) handleOCR(args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := ocr.DefaultOptions()
	if a.Language != "" {
		opts.Language = a.Language
	}
	opts.Whitelist = a.Whitelist

	out := ocrResult{Cleaned: a.Clean == nil || *a.Clean}
	var g *imaging.Grid
	if out.Cleaned {
		res, _, _, err := s.clean(a.Path, a.Model, nil, 0, nil)
		if err != nil {
			return nil, err
		}
		g, out.Removed = res.Image, res.Removed
	} else {
		var err error
		if g, err = s.loadGrid(a.Path, nil); err != nil {
			return nil, err
		}
	}
	text, err := ocr.RecognizeGrid(g, opts)
	if err != nil {
		return nil, err
	}
	out.Result = text
	return out, nil
}
