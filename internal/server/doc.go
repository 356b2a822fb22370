// Package server implements the MCP (Model Context Protocol) server for the
// letter denoising tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - denoise_binarize: Binarize an image and report ink coverage
//   - denoise_features: Geometric feature vector of one ink pixel
//   - denoise_posterior: P(letter) of one ink pixel and its decision
//   - denoise_clean: Erase noise pixels, return statistics and the result
//   - denoise_ocr: Read the (optionally cleaned) letters with Tesseract
//
// Classifier parameters are read from the paths in the configuration on
// every call, so a training session running next to the server is picked up
// without a restart.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
