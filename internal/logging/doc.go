// Package logging configures structured logging for mcp-docs.
//
// All logs go to stderr exclusively: stdout is reserved for the tool-call
// transport (an external collaborator, out of scope for this module), and
// writing anything else to it would corrupt that protocol stream.
package logging
