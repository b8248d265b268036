package crm

import _ "embed"

//go:embed customers.yaml
var defaultFixtures []byte

// LoadDefault builds a Service from the embedded development fixture set.
func LoadDefault() (*Service, error) {
	return Load(defaultFixtures)
}
