package lucia

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Agent definitions can be edited as YAML in the dashboard, the same
// way home-automation users maintain the rest of their setup. These
// helpers convert between the YAML document and the backend's JSON DTO.

// MarshalAgentYAML renders an agent definition as a YAML document.
func MarshalAgentYAML(agent *Agent) ([]byte, error) {
	out, err := yaml.Marshal(agent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent yaml: %w", err)
	}
	return out, nil
}

// UnmarshalAgentYAML parses a YAML agent definition. Unknown fields are
// rejected so typos surface instead of being silently dropped.
func UnmarshalAgentYAML(data []byte) (*Agent, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var agent Agent
	if err := dec.Decode(&agent); err != nil {
		return nil, fmt.Errorf("invalid agent yaml: %w", err)
	}

	if strings.TrimSpace(agent.Name) == "" {
		return nil, fmt.Errorf("agent yaml is missing a name")
	}
	return &agent, nil
}
