// Package relay implements the request router of the command relay.
//
// # Overview
//
// The router turns one raw request into one raw reply. It understands six
// operations:
//
//	POST /register_pc2        {"ip": "...", "name": "..."}
//	GET  /list_pc2s
//	POST /send_command        {"target": "...", "command": "..."}
//	GET  /get_command/<ip>
//	POST /send_response       {"sender": "...", "output": "..."}
//	GET  /get_response/<ip>
//
// Anything else gets a 404 with the 9-byte body "Not Found".
//
// # Silent failures
//
// A nil reply is a valid outcome: the connection closes with no bytes
// written. This happens for malformed bodies, for commands addressed to a new
// identity while the directory is full, and for responses from an unknown
// sender. Agents treat the missing reply as a failure and retry on their own.
//
// Registration of a new identity in a full directory still replies ok.
//
// # Locking
//
// One mutex is held from dispatch through reply serialization, so the reply
// always reflects the mutation it reports and concurrent send/take on the
// same mailbox serialize. Logging and journal writes happen after release.
package relay
