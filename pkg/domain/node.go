package domain

// NodeID identifies a conversation phase. The set is closed: every router
// destination must be one of these constants or NodeEnd, and the runtime
// registry verifies that at startup.
type NodeID string

const (
	NodeGreeting            NodeID = "greeting"
	NodeProblemCapture      NodeID = "problem_capture"
	NodePhoneLookup         NodeID = "phone_lookup"
	NodeAddressSearch       NodeID = "address_search"
	NodeAddressConfirmation NodeID = "address_confirmation"
	NodeDiagnostics         NodeID = "diagnostics"
	NodeInformProviderIssue NodeID = "inform_provider_issue"
	NodeTroubleshooting     NodeID = "troubleshooting"
	NodeCreateTicket        NodeID = "create_ticket"
	NodeClosing             NodeID = "closing"

	// NodeEnd is the terminal sentinel. It has no node function; reaching it
	// stops the turn loop.
	NodeEnd NodeID = "end"
)

// AllNodes lists every executable node (NodeEnd excluded).
var AllNodes = []NodeID{
	NodeGreeting,
	NodeProblemCapture,
	NodePhoneLookup,
	NodeAddressSearch,
	NodeAddressConfirmation,
	NodeDiagnostics,
	NodeInformProviderIssue,
	NodeTroubleshooting,
	NodeCreateTicket,
	NodeClosing,
}

// Terminal reports whether the id is the end sentinel.
func (n NodeID) Terminal() bool {
	return n == NodeEnd
}
