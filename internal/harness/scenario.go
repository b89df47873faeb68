package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cartflow/internal/engine"
	"github.com/roach88/cartflow/internal/order"
)

// Scenario is one scripted cart lifecycle.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	User        string `yaml:"user"`

	MergeDuplicateLines      bool `yaml:"merge_duplicate_lines"`
	AllowEditsDuringCheckout bool `yaml:"allow_edits_during_checkout"`

	// Checkout scripts the checkout activity, one entry per attempt. The last
	// entry repeats when attempts outnumber entries; an empty script always
	// succeeds.
	Checkout []CheckoutOutcome `yaml:"checkout"`

	Steps  []Step       `yaml:"steps"`
	Expect *Expectation `yaml:"expect"`
}

// CheckoutOutcome is one scripted checkout attempt: either a status or an
// error, not both.
type CheckoutOutcome struct {
	Status string `yaml:"status"`
	Error  string `yaml:"error"`
}

// Step is one command dispatched to the cart.
type Step struct {
	Op       string `yaml:"op"` // add | remove | quantity | checkout
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
}

// Expectation is the scenario's asserted end state. Zero-value fields are not
// checked; Messages, when present, must match the notification log exactly.
type Expectation struct {
	Status   string   `yaml:"status"`
	Total    *float64 `yaml:"total"`
	Messages []string `yaml:"messages"`
}

func (s Step) command() (engine.Command, error) {
	switch s.Op {
	case "add":
		return engine.Command{Kind: engine.CmdAddItem, ProductID: s.Product}, nil
	case "remove":
		return engine.Command{Kind: engine.CmdRemoveItem, ProductID: s.Product}, nil
	case "quantity":
		return engine.Command{Kind: engine.CmdUpdateQuantity, ProductID: s.Product, Quantity: s.Quantity}, nil
	case "checkout":
		return engine.Command{Kind: engine.CmdCheckout}, nil
	}
	return engine.Command{}, fmt.Errorf("unknown step op %q", s.Op)
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	if s.User == "" {
		s.User = "alice"
	}
	for i, step := range s.Steps {
		if _, err := step.command(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	for i, o := range s.Checkout {
		if o.Status != "" && o.Error != "" {
			return fmt.Errorf("checkout outcome %d: status and error are mutually exclusive", i)
		}
		if o.Status != "" && !order.CheckoutStatus(o.Status).Valid() {
			return fmt.Errorf("checkout outcome %d: invalid status %q", i, o.Status)
		}
		if o.Status == "" && o.Error == "" {
			return fmt.Errorf("checkout outcome %d: one of status or error is required", i)
		}
	}
	return nil
}
