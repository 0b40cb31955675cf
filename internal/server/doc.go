// Package server implements the MCP (Model Context Protocol) server for
// delivery earnings screenshots.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so stdout carries protocol frames only.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Screenshots:
//   - screenshot_info: Dimensions, format and light/dark theme
//   - screenshot_preprocess: OCR cleanup, returned inline or written to disk
//   - screenshot_extract: Preprocess, OCR and parse one screenshot
//   - screenshot_batch: Extract many screenshots, failures reported per item
//
// Text:
//   - earnings_parse_text: Parse OCR text into a record
//   - earnings_classify: Day / week / unknown with the deciding rule
//
// Engine:
//   - ocr_info: Tesseract availability and version
//
// Screenshot tools accept an "overrides" object whose keys match
// preprocess.Overrides; omitted keys keep the server's configuration.
//
// # Image Caching
//
// Decoded screenshots are cached by path for the lifetime of the process,
// so preprocessing the same file with different overrides decodes it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000. Images that cannot be decoded or processed report
// "could not process image" followed by the cause in the data field.
package server
