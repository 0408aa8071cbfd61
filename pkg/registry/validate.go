package registry

import (
	"fmt"
	"sort"

	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/schema"
)

// Enumerated value sets checked by strict validation.
var (
	// ValidAgentStatuses are the accepted per-agent health states.
	ValidAgentStatuses = map[string]bool{
		"idle":      true,
		"active":    true,
		"busy":      true,
		"waiting":   true,
		"error":     true,
		"offline":   true,
		"completed": true,
	}

	// ValidWorkflowPatterns are the accepted collaboration patterns.
	ValidWorkflowPatterns = map[string]bool{
		"sequential":   true,
		"parallel":     true,
		"hierarchical": true,
		"pipeline":     true,
	}

	// ValidExecutionModes are the accepted execution modes.
	ValidExecutionModes = map[string]bool{
		"sequential": true,
		"parallel":   true,
		"supervisor": true,
	}
)

// Rule identifiers accepted in a descriptor's validation_rules list.
const (
	RuleProgressRange      = "progress_range_0_100"
	RuleMonotonicIncrease  = "monotonic_increase"
	RuleValidAgentStatus   = "valid_agent_status"
	RuleValidPattern       = "valid_workflow_pattern"
	RuleValidExecutionMode = "valid_execution_mode"
	RuleValidPermissions   = "valid_tool_permissions"
)

type ruleHandler func(name string, value any) []error

var ruleHandlers = map[string]ruleHandler{
	RuleProgressRange:      checkProgressRange,
	RuleValidAgentStatus:   checkAgentStatus,
	RuleValidPattern:       checkWorkflowPattern,
	RuleValidExecutionMode: checkExecutionMode,
	RuleValidPermissions:   checkToolPermissions,

	// Monotonicity is a merge-time property: the progress reducer rejects
	// lower proposals, so a stored snapshot cannot witness a violation.
	RuleMonotonicIncrease: func(string, any) []error { return nil },
}

// ValidateValue runs the descriptor's type check and every validation rule,
// returning all violations rather than stopping at the first. Unregistered
// fields report a single not-registered error.
func (r *Registry) ValidateValue(name string, value any) []error {
	d, err := r.Describe(name)
	if err != nil {
		return []error{err}
	}

	var errs []error
	if value == nil {
		if d.Required {
			errs = append(errs, &schema.ValidationError{Key: name, Reason: "required"})
		}
		return errs
	}

	if err := d.Type.Validate(value); err != nil {
		errs = append(errs, &schema.ValidationError{Key: name, Reason: err.Error(), Value: value})
	}
	for _, rule := range d.Rules {
		errs = append(errs, ruleHandlers[rule](name, value)...)
	}
	return errs
}

// ValidateState checks a state object against the active descriptors.
//
// Lenient mode (strict=false) checks only that every required active field is
// present and has the declared container shape (list/dict/scalar), collecting
// all violations into an AggregateError.
//
// Strict mode additionally runs every type check and validation rule
// (enum membership, numeric ranges, nested shapes) and fails immediately with
// the first violated rule. This is the path run after every migration hop.
func (r *Registry) ValidateState(state map[string]any, strict bool) error {
	if state == nil {
		return &schema.ValidationError{Key: "", Reason: "state is nil"}
	}

	var lenientErrs []error
	for _, d := range r.ActiveFields() {
		value, present := state[d.Name]
		if !present || value == nil {
			if d.Required {
				err := &schema.ValidationError{Key: d.Name, Reason: "required field missing"}
				if strict {
					return err
				}
				lenientErrs = append(lenientErrs, err)
			}
			continue
		}

		if strict {
			if errs := r.ValidateValue(d.Name, value); len(errs) > 0 {
				return errs[0]
			}
			continue
		}

		if err := checkShape(d, value); err != nil {
			lenientErrs = append(lenientErrs, err)
		}
	}

	if len(lenientErrs) > 0 {
		return &schema.AggregateError{Errors: lenientErrs}
	}
	return nil
}

// checkShape verifies only the container kind, not element types.
func checkShape(d Descriptor, value any) error {
	name := d.Type.Name()
	switch name[0] {
	case '[':
		if err := schema.Slice(schema.Any()).Validate(value); err != nil {
			return &schema.ValidationError{Key: d.Name, Reason: "expected list", Value: value}
		}
	case '{':
		if err := schema.Dict().Validate(value); err != nil {
			return &schema.ValidationError{Key: d.Name, Reason: "expected mapping", Value: value}
		}
	}
	return nil
}

func checkProgressRange(name string, value any) []error {
	entries, ok := value.(map[string]any)
	if !ok {
		if typed, isTyped := value.(map[string]float64); isTyped {
			entries = make(map[string]any, len(typed))
			for k, v := range typed {
				entries[k] = v
			}
		} else {
			return []error{&schema.ValidationError{Key: name, Reason: "expected progress mapping", Value: value}}
		}
	}

	var errs []error
	for _, task := range sortedKeys(entries) {
		progress, okNum := toFloat(entries[task])
		if !okNum || progress < 0 || progress > 100 {
			errs = append(errs, &schema.ValidationError{
				Key:    name,
				Reason: fmt.Sprintf("progress for %q must be between 0 and 100", task),
				Value:  entries[task],
			})
		}
	}
	return errs
}

func checkAgentStatus(name string, value any) []error {
	entries, ok := value.(map[string]any)
	if !ok {
		if typed, isTyped := value.(map[string]string); isTyped {
			entries = make(map[string]any, len(typed))
			for k, v := range typed {
				entries[k] = v
			}
		} else {
			return []error{&schema.ValidationError{Key: name, Reason: "expected status mapping", Value: value}}
		}
	}

	var errs []error
	for _, agent := range sortedKeys(entries) {
		status, isString := entries[agent].(string)
		if !isString || !ValidAgentStatuses[status] {
			errs = append(errs, &schema.ValidationError{
				Key:    name,
				Reason: fmt.Sprintf("invalid status %v for agent %q", entries[agent], agent),
			})
		}
	}
	return errs
}

func checkWorkflowPattern(name string, value any) []error {
	pattern, ok := value.(string)
	if !ok || !ValidWorkflowPatterns[pattern] {
		return []error{&schema.ValidationError{
			Key:    name,
			Reason: fmt.Sprintf("invalid workflow pattern %v", value),
		}}
	}
	return nil
}

func checkExecutionMode(name string, value any) []error {
	mode, ok := value.(string)
	if !ok || !ValidExecutionModes[mode] {
		return []error{&schema.ValidationError{
			Key:    name,
			Reason: fmt.Sprintf("invalid execution mode %v", value),
		}}
	}
	return nil
}

func checkToolPermissions(name string, value any) []error {
	entries, ok := value.(map[string]any)
	if !ok {
		if typed, isTyped := value.(map[string][]string); isTyped {
			entries = make(map[string]any, len(typed))
			for k, v := range typed {
				entries[k] = v
			}
		} else {
			return []error{&schema.ValidationError{Key: name, Reason: "expected permission mapping", Value: value}}
		}
	}

	listOfStrings := schema.Slice(schema.String())
	var errs []error
	for _, agent := range sortedKeys(entries) {
		if err := listOfStrings.Validate(entries[agent]); err != nil {
			errs = append(errs, &schema.ValidationError{
				Key:    name,
				Reason: fmt.Sprintf("permissions for agent %q must be a list of strings", agent),
				Value:  entries[agent],
			})
		}
	}
	return errs
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConflictStrategies lists the accepted conflict_resolution_strategy values
// for the config document.
var ConflictStrategies = map[string]reducer.ConflictStrategy{
	"most_restrictive": reducer.MostRestrictive,
	"most_permissive":  reducer.MostPermissive,
	"last_write_wins":  reducer.ReplaceWins,
}
