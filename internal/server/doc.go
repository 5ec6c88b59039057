// Package server implements the MCP (Model Context Protocol) server that
// exposes signature detection and redaction as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the zap logger, never to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information:
//   - image_info: Dimensions, format and file size
//   - image_crop: Extract a rectangular region as base64 PNG
//
// Signatures:
//   - signature_detect: Scored candidates, best box and refined box
//   - signature_redact: Write a redacted copy (mask or quick pipeline)
//   - signature_debug: Write and return the box overlay
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process. Files
// written by a tool are evicted so a later call re-reads them from disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Finding no signature is not an error; the tool result reports found=false.
package server
