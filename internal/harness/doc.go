// Package harness executes scripted cart scenarios against the engine and
// compares their journal traces against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	user: alice
//	checkout:
//	  - status: SUCCESS        # or: error: "card declined"
//	steps:
//	  - op: add
//	    product: Ristretto
//	  - op: quantity
//	    product: Ristretto
//	    quantity: 2
//	  - op: checkout
//	expect:
//	  status: SUCCESS
//	  total: 2
//	  messages:
//	    - "Thank you for your order."
//
// # Deterministic Testing
//
// Scenarios execute with a fixed order id generator, a scripted checkout
// activity, a recording notifier, and an in-memory journal, so the resulting
// trace is identical across runs and suitable for golden file comparison.
// Trace text omits timestamps for the same reason.
package harness
