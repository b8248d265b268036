package domain

// Patch is a partial-state update produced by one node run. Nil sections are
// untouched; non-nil sections replace the corresponding record wholesale.
// AppendMessages and AppendErrors always append, never replace, so the
// transcript can only grow.
type Patch struct {
	Customer     *Customer
	Problem      *Problem
	Diagnostics  *Diagnostics
	Troubleshoot *Troubleshooting
	Ticket       *Ticket
	Flags        *Flags
	LastError    *string

	AppendMessages []Message
	AppendErrors   []ErrorEntry
}

// Empty reports whether applying the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Customer == nil &&
		p.Problem == nil &&
		p.Diagnostics == nil &&
		p.Troubleshoot == nil &&
		p.Ticket == nil &&
		p.Flags == nil &&
		p.LastError == nil &&
		len(p.AppendMessages) == 0 &&
		len(p.AppendErrors) == 0
}

// Apply merges the patch into the state atomically. The executor calls this
// once per node run; nothing observes a half-merged state.
func (s *ConversationState) Apply(p Patch) {
	if p.Customer != nil {
		s.Customer = *p.Customer
	}
	if p.Problem != nil {
		s.Problem = *p.Problem
	}
	if p.Diagnostics != nil {
		s.Diagnostics = *p.Diagnostics
	}
	if p.Troubleshoot != nil {
		t := *p.Troubleshoot
		// Retry count never exceeds the cap; hitting it forces escalation.
		if t.MaxRetries > 0 && t.RetryCount >= t.MaxRetries {
			t.RetryCount = t.MaxRetries
			t.NeedsEscalation = true
		}
		s.Troubleshoot = t
	}
	if p.Ticket != nil {
		s.Ticket = *p.Ticket
	}
	if p.Flags != nil {
		s.Flags = *p.Flags
	}
	if p.LastError != nil {
		s.LastError = *p.LastError
	}
	s.Messages = append(s.Messages, p.AppendMessages...)
	s.Errors = append(s.Errors, p.AppendErrors...)
}
