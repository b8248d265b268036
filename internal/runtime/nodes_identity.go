package runtime

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aurida/helpline/pkg/domain"
)

var phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)

// extractPhone pulls a phone-number-looking token out of free text.
// Returns "" when nothing with at least 8 digits is present.
func extractPhone(text string) string {
	match := phoneRe.FindString(text)
	if match == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range match {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if len(strings.TrimPrefix(phone, "+")) < 8 {
		return ""
	}
	return phone
}

// nodePhoneLookup resolves caller identity via the CRM by phone number.
// Asks for the number when none is known yet.
func (e *Engine) nodePhoneLookup(ctx context.Context, s *domain.ConversationState) Result {
	phone := s.Customer.Phone
	if phone == "" {
		phone = extractPhone(s.LastUserMessage())
	}
	if phone == "" {
		return Result{Patch: domain.Patch{
			AppendMessages: []domain.Message{
				e.assistantMessage(domain.NodePhoneLookup, e.t(s, "identity.ask_phone")),
			},
			Flags: &domain.Flags{WaitingForUserInput: true},
		}}
	}

	res, err := e.collab.CRM.LookupByPhone(ctx, phone)
	if err != nil {
		return Result{Err: fmt.Errorf("crm lookup by phone: %w", err)}
	}

	if res.Found {
		customer := res.Customer
		customer.Phone = phone
		return Result{Patch: domain.Patch{Customer: &customer}}
	}

	// Record the attempted phone so the router moves on to address search.
	customer := s.Customer
	customer.Phone = phone
	return Result{Patch: domain.Patch{Customer: &customer}}
}

const addressParsePrompt = `Extract the service address from the customer's message.

Respond with a single JSON object, nothing else:
{
  "city": city name or "",
  "street": street name or "",
  "house_number": house number or "",
  "apartment": apartment number or ""
}

Use "" for anything not present in the message.`

type addressParse struct {
	City        string `mapstructure:"city"`
	Street      string `mapstructure:"street"`
	HouseNumber string `mapstructure:"house_number"`
	Apartment   string `mapstructure:"apartment"`
}

// nodeAddressSearch is the identity-recovery path: it retries phone lookup
// when the latest message contains a number, otherwise parses an address and
// searches the CRM by it. Gives up after maxAddressAsks unanswered requests.
func (e *Engine) nodeAddressSearch(ctx context.Context, s *domain.ConversationState) Result {
	if s.Customer.Identified() {
		return Result{}
	}

	text := s.LastUserMessage()

	if phone := extractPhone(text); phone != "" && phone != s.Customer.Phone {
		res, err := e.collab.CRM.LookupByPhone(ctx, phone)
		if err != nil {
			return Result{Err: fmt.Errorf("crm lookup by phone: %w", err)}
		}
		if res.Found {
			customer := res.Customer
			customer.Phone = phone
			return Result{Patch: domain.Patch{Customer: &customer}}
		}
		customer := s.Customer
		customer.Phone = phone
		if patch, ok := e.askForAddress(s, customer); ok {
			return Result{Patch: patch}
		}
		return Result{Patch: domain.Patch{Customer: &customer}}
	}

	if text != "" && s.AssistantAsks(domain.NodeAddressSearch) > 0 {
		raw, err := e.collab.LLM.GenerateJSON(ctx, addressParsePrompt, recentMessages(s, 2), 0, 200)
		if err != nil {
			return Result{Err: fmt.Errorf("parse address: %w", err)}
		}
		var addr addressParse
		if err := mapstructure.WeakDecode(raw, &addr); err != nil {
			return Result{Err: fmt.Errorf("decode address: %w", err)}
		}

		if addr.City != "" && addr.Street != "" && addr.HouseNumber != "" {
			res, err := e.collab.CRM.LookupByAddress(ctx, addr.City, addr.Street, addr.HouseNumber, addr.Apartment)
			if err != nil {
				return Result{Err: fmt.Errorf("crm lookup by address: %w", err)}
			}
			if res.Found {
				customer := res.Customer
				customer.Phone = s.Customer.Phone
				return Result{Patch: domain.Patch{Customer: &customer}}
			}
		}
	}

	if patch, ok := e.askForAddress(s, s.Customer); ok {
		return Result{Patch: patch}
	}
	// Out of attempts; the router concludes the search and closes.
	return Result{}
}

// askForAddress produces the ask-for-address patch unless the ask budget is
// spent.
func (e *Engine) askForAddress(s *domain.ConversationState, customer domain.Customer) (domain.Patch, bool) {
	if s.AssistantAsks(domain.NodeAddressSearch) >= maxAddressAsks {
		return domain.Patch{}, false
	}
	return domain.Patch{
		Customer: &customer,
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeAddressSearch, e.t(s, "identity.ask_address")),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}, true
}

// nodeAddressConfirmation confirms the resolved address with the caller. A
// single address on file is confirmed silently; several addresses prompt a
// choice.
func (e *Engine) nodeAddressConfirmation(ctx context.Context, s *domain.ConversationState) Result {
	customer := s.Customer
	if addressConfirmed(s) {
		return Result{}
	}

	asked := s.AssistantAsks(domain.NodeAddressConfirmation)
	if asked == 0 {
		if len(customer.Addresses) <= 1 {
			// One known address (or none beyond the customer record itself):
			// nothing to disambiguate.
			confirmed := true
			customer.AddressConfirmed = &confirmed
			return Result{Patch: domain.Patch{Customer: &customer}}
		}
		return Result{Patch: domain.Patch{
			AppendMessages: []domain.Message{
				e.assistantMessage(domain.NodeAddressConfirmation,
					e.t(s, "identity.choose_address", formatAddressList(customer.Addresses))),
			},
			Flags: &domain.Flags{WaitingForUserInput: true},
		}}
	}

	reply := s.LastUserMessage()
	if idx, ok := parseAddressChoice(reply, len(customer.Addresses)); ok {
		customer.Addresses = []domain.Address{customer.Addresses[idx]}
		confirmed := true
		customer.AddressConfirmed = &confirmed
		return Result{Patch: domain.Patch{Customer: &customer}}
	}
	if isAffirmative(reply) {
		confirmed := true
		customer.AddressConfirmed = &confirmed
		if len(customer.Addresses) > 1 {
			customer.Addresses = customer.Addresses[:1]
		}
		return Result{Patch: domain.Patch{Customer: &customer}}
	}
	if isNegative(reply) {
		// The record on file is wrong. Drop the resolved identity so the
		// address search starts over from whatever the caller supplies next;
		// the phone stays so the same number is not retried.
		confirmed := false
		return Result{Patch: domain.Patch{Customer: &domain.Customer{
			Phone:            customer.Phone,
			AddressConfirmed: &confirmed,
		}}}
	}

	// Unclear answer: re-ask with the first address spelled out.
	return Result{Patch: domain.Patch{
		AppendMessages: []domain.Message{
			e.assistantMessage(domain.NodeAddressConfirmation,
				e.t(s, "identity.confirm_address", formatAddress(customer.Addresses[0]))),
		},
		Flags: &domain.Flags{WaitingForUserInput: true},
	}}
}

func formatAddress(a domain.Address) string {
	out := fmt.Sprintf("%s, %s %s", a.City, a.Street, a.HouseNumber)
	if a.Apartment != "" {
		out += "-" + a.Apartment
	}
	return out
}

func formatAddressList(addrs []domain.Address) string {
	parts := make([]string, 0, len(addrs))
	for i, a := range addrs {
		parts = append(parts, fmt.Sprintf("%d) %s", i+1, formatAddress(a)))
	}
	return strings.Join(parts, " ")
}

// parseAddressChoice interprets a reply like "2" or "2)" as a 1-based pick.
func parseAddressChoice(reply string, n int) (int, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(reply), ").")
	idx, err := strconv.Atoi(trimmed)
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}

var (
	affirmativeWords = []string{"taip", "yes", "y", "ok", "gerai", "aha", "tikrai", "correct", "teisingai"}
	negativeWords    = []string{"ne", "no", "n", "nope", "neteisingai", "wrong", "kitas", "kita"}
)

func isAffirmative(reply string) bool {
	return containsWord(reply, affirmativeWords)
}

func isNegative(reply string) bool {
	return containsWord(reply, negativeWords)
}

func containsWord(reply string, words []string) bool {
	for _, field := range strings.FieldsFunc(strings.ToLower(reply), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}
