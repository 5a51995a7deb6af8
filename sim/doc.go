// Package sim provides the tick-driven fulfillment-center shift simulation.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - queue.go: Batch/WorkQueue model and the SLA vs FIFO take discipline
//   - event.go: Disruption variants and the per-tick Modifiers fold
//   - shift.go: The Shift aggregate and its Step function (one tick = one minute)
//
// # Tick Order
//
// Step runs, in order: transit arrivals, event activation/expiry, modifier
// fold, one-time start effects, micro-failure rolls, demand injection, the six
// stages (Receive, Stow, Pick, Pack, Sort, Ship), SWAT rework, outage
// countdown, fatigue/morale/incident/compliance updates, labor accounting,
// history, and the termination check.
//
// # Determinism
//
// Every stochastic draw goes through the single RNG owned by the Shift.
// Operator actions (actions.go) never draw, so a shift is reproduced exactly
// by its scenario, its seed and the ticks at which actions were applied.
//
// # Sub-packages
//   - sim/catalog/: Scenario catalog (embedded YAML, schema validation)
//   - sim/control/: Lifecycle controller, wall-clock runner, action scripts
//   - sim/trace/: Per-tick and per-action trace records and export
package sim
