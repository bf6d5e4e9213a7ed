// ABOUTME: A single agent record with its command and response mailboxes.
// ABOUTME: Each mailbox holds one value; take returns it and clears the slot.

package agent

// Record is one known agent. Identity and DisplayName are fixed at creation.
type Record struct {
	Identity    string
	DisplayName string

	command  string
	response string
}

// SetCommand stores text as the pending command, replacing any previous one.
func (r *Record) SetCommand(text string) {
	r.command = text
}

// TakeCommand returns the pending command and clears it.
// An empty slot reports false.
func (r *Record) TakeCommand() (string, bool) {
	return take(&r.command)
}

// HasCommand reports whether a command is waiting.
func (r *Record) HasCommand() bool {
	return r.command != ""
}

// SetResponse stores text as the pending response, replacing any previous one.
func (r *Record) SetResponse(text string) {
	r.response = text
}

// TakeResponse returns the pending response and clears it.
func (r *Record) TakeResponse() (string, bool) {
	return take(&r.response)
}

// HasResponse reports whether a response is waiting.
func (r *Record) HasResponse() bool {
	return r.response != ""
}

func take(slot *string) (string, bool) {
	v := *slot
	if v == "" {
		return "", false
	}
	*slot = ""
	return v, true
}
