package registry

import (
	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/schema"
)

// CurrentSchemaVersion is the state_version written by newly created states
// and the default target for auto-migration.
const CurrentSchemaVersion = "1.1.0"

// VersionField is the state field holding the schema version. It is always
// present and is the single source of truth for migration decisions.
const VersionField = "state_version"

func mustType(expr string) schema.Type {
	t, err := schema.ParseType(expr)
	if err != nil {
		panic(err) // built-in table, exercised by tests
	}
	return t
}

// Default returns the built-in field table. An external config document can
// replace it wholesale via Load; the shipped table mirrors the schema the
// orchestration layer writes.
func Default() *Registry {
	r, err := New(defaultDescriptors(), defaultFlags())
	if err != nil {
		panic(err)
	}
	return r
}

func defaultFlags() map[string]bool {
	return map[string]bool{
		"enable_message_management":    true,
		"enable_task_management":       true,
		"enable_agent_coordination":    true,
		"enable_tool_execution":        true,
		"enable_collaboration_context": true,
		"enable_memory_layers":         true,
		"enable_communication":         true,
		"enable_control_flow":          true,
		"enable_debugging":             true,
		"enable_private_memory":        true,
	}
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		// Message management
		{
			Name: "messages", Type: mustType("[dict]"),
			Strategy: reducer.Chronological, Group: GroupMessageManagement,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 1000, ArchiveAfterHours: 24, CleanupStrategy: "fifo"},
			Description: "conversation history as {type, content, metadata} envelopes",
		},

		// Task management
		{
			Name: "current_task", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupTaskManagement,
			Default:     "",
			Description: "active task description",
		},
		{
			Name: "subtasks", Type: mustType("[dict]"),
			Strategy: reducer.AppendBounded, Group: GroupTaskManagement,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 500, ArchiveAfterHours: 48, CleanupStrategy: "fifo"},
			Description: "breakdown of the main task",
		},
		{
			Name: "task_progress", Type: mustType("{float}"),
			Strategy: reducer.MonotonicProgress, Group: GroupTaskManagement,
			Required: true, Default: map[string]any{},
			Rules:       []string{RuleProgressRange, RuleMonotonicIncrease},
			Description: "progress percentage (0-100) per subtask plus synthetic _overall",
		},
		{
			Name: "task_metadata", Type: mustType("dict"),
			Strategy: reducer.LastWriteWins, Group: GroupTaskManagement,
			Required: true, Default: map[string]any{},
			Description: "additional task context",
		},

		// Agent coordination
		{
			Name: "current_agent", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupAgentCoordination,
			Default:     "",
			Description: "currently executing agent id",
		},
		{
			Name: "next_agent", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupAgentCoordination,
			Default:     "",
			Description: "next agent to execute",
		},
		{
			Name: "agent_outputs", Type: mustType("{any}"),
			Strategy: reducer.AppendHistory, Group: GroupAgentCoordination,
			Required: true, Default: map[string]any{},
			Retention:   &RetentionPolicy{MaxEntries: 10, ArchiveAfterHours: 24, CleanupStrategy: "fifo"},
			Description: "per-agent results with bounded history",
		},
		{
			Name: "agent_queue", Type: mustType("[string]"),
			Strategy: reducer.LastWriteWins, Group: GroupAgentCoordination,
			Required: true, Default: []any{},
			Description: "pending agent executions",
		},
		{
			Name: "agent_status", Type: mustType("{string}"),
			Strategy: reducer.LastWriteWins, Group: GroupAgentCoordination,
			Required: true, Default: map[string]any{},
			Rules:       []string{RuleValidAgentStatus},
			Description: "health status per agent",
		},

		// Tool execution
		{
			Name: "tool_calls", Type: mustType("[dict]"),
			Strategy: reducer.Chronological, Group: GroupToolExecution,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 200, CleanupStrategy: "fifo"},
			Description: "history of tool requests",
		},
		{
			Name: "tool_results", Type: mustType("{any}"),
			Strategy: reducer.AppendHistory, Group: GroupToolExecution,
			Required: true, Default: map[string]any{},
			Retention:   &RetentionPolicy{MaxEntries: 5, CleanupStrategy: "fifo"},
			Description: "per-tool results with bounded history and update counts",
		},
		{
			Name: "tool_permissions", Type: mustType("{[string]}"),
			Strategy: reducer.PermissionMerge, Conflict: reducer.MostRestrictive,
			Group:    GroupToolExecution,
			Required: true, Default: map[string]any{},
			Rules:       []string{RuleValidPermissions},
			Description: "capability sets per agent; intersection wins by default",
		},
		{
			Name: "pending_tools", Type: mustType("[dict]"),
			Strategy: reducer.LastWriteWins, Group: GroupToolExecution,
			Required: true, Default: []any{},
			Description: "queued tool requests",
		},
		{
			Name: "tool_errors", Type: mustType("[dict]"),
			Strategy: reducer.AppendBounded, Group: GroupToolExecution,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 100, CleanupStrategy: "fifo"},
			Description: "failed tool executions",
		},

		// Collaboration context
		{
			Name: "collaboration_prompt", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupCollaborationContext,
			Required: true, Default: "",
			Description: "natural-language collaboration instructions",
		},
		{
			Name: "coordination_rules", Type: mustType("[dict]"),
			Strategy: reducer.LastWriteWins, Group: GroupCollaborationContext,
			Required: true, Default: []any{},
			Description: "extracted rules and constraints",
		},
		{
			Name: "agent_roles", Type: mustType("{string}"),
			Strategy: reducer.LastWriteWins, Group: GroupCollaborationContext,
			Required: true, Default: map[string]any{},
			Description: "role assignment per agent",
		},
		{
			Name: "workflow_pattern", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupCollaborationContext,
			Required: true, Default: "sequential",
			Rules:       []string{RuleValidPattern},
			Description: "collaboration pattern",
		},
		{
			Name: "decision_points", Type: mustType("[dict]"),
			Strategy: reducer.LastWriteWins, Group: GroupCollaborationContext,
			Required: true, Default: []any{},
			Description: "conditional branch points",
		},

		// Memory layers
		{
			Name: "short_term_memory", Type: mustType("dict"),
			Strategy: reducer.DeepMerge, Group: GroupMemoryLayers,
			Required: true, Default: map[string]any{},
			Description: "current conversation context",
		},
		{
			Name: "working_memory", Type: mustType("dict"),
			Strategy: reducer.DeepMerge, Group: GroupMemoryLayers,
			Required: true, Default: map[string]any{},
			Description: "active task information",
		},
		{
			Name: "episodic_memory", Type: mustType("[dict]"),
			Strategy: reducer.Chronological, Group: GroupMemoryLayers,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 500, ArchiveAfterHours: 72, CleanupStrategy: "fifo"},
			Description: "sequence of events",
		},
		{
			Name: "shared_memory", Type: mustType("dict"),
			Strategy: reducer.DeepMerge, Group: GroupMemoryLayers,
			Required: true, Default: map[string]any{},
			Description: "information visible to all agents",
		},
		{
			Name: "private_memory", Type: mustType("{any}"),
			Strategy: reducer.DeepMerge, Group: GroupMemoryLayers,
			Required: true, Default: map[string]any{},
			FeatureFlag: "enable_private_memory",
			Description: "agent-scoped information",
		},

		// Communication
		{
			Name: "agent_messages", Type: mustType("[dict]"),
			Strategy: reducer.Chronological, Group: GroupCommunication,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 200, CleanupStrategy: "fifo"},
			Description: "inter-agent communications",
		},
		{
			Name: "help_requests", Type: mustType("[dict]"),
			Strategy: reducer.KeyedDedup, Group: GroupCommunication,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 100, CleanupStrategy: "fifo"},
			DedupKeys:   []string{"topic", "requesting_agent"},
			Description: "assistance requests between agents",
		},
		{
			Name: "broadcast_messages", Type: mustType("[dict]"),
			Strategy: reducer.AppendBounded, Group: GroupCommunication,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 100, CleanupStrategy: "fifo"},
			Description: "system-wide announcements",
		},
		{
			Name: "pending_responses", Type: mustType("[dict]"),
			Strategy: reducer.LastWriteWins, Group: GroupCommunication,
			Required: true, Default: []any{},
			Description: "awaited agent responses",
		},

		// Control flow
		{
			Name: "should_continue", Type: mustType("bool"),
			Strategy: reducer.LastWriteWins, Group: GroupControlFlow,
			Required: true, Default: true,
			Description: "whether to proceed with execution",
		},
		{
			Name: "requires_human_approval", Type: mustType("bool"),
			Strategy: reducer.LastWriteWins, Group: GroupControlFlow,
			Required: true, Default: false,
			Description: "pause for human input",
		},
		{
			Name: "interrupt_checkpoint", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupControlFlow,
			Default:     "",
			Description: "where to pause execution",
		},
		{
			Name: "resume_point", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupControlFlow,
			Default:     "",
			Description: "where to continue after an interrupt",
		},
		{
			Name: "execution_mode", Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupControlFlow,
			Required: true, Default: "sequential",
			Rules:       []string{RuleValidExecutionMode},
			Description: "sequential, parallel or supervisor execution",
		},

		// Debugging & monitoring
		{
			Name: VersionField, Type: mustType("string"),
			Strategy: reducer.LastWriteWins, Group: GroupDebugging,
			Required: true, Default: CurrentSchemaVersion,
			Description: "schema version, source of truth for migration",
		},
		{
			Name: "execution_trace", Type: mustType("[dict]"),
			Strategy: reducer.Chronological, Group: GroupDebugging,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 100, ArchiveAfterHours: 24, CleanupStrategy: "fifo"},
			Description: "step-by-step execution log",
		},
		{
			Name: "error_log", Type: mustType("[string]"),
			Strategy: reducer.DedupAppend, Group: GroupDebugging,
			Required: true, Default: []any{},
			Retention:   &RetentionPolicy{MaxEntries: 50, ArchiveAfterHours: 48, CleanupStrategy: "fifo"},
			Description: "deduplicated error messages",
		},
		{
			Name: "performance_metrics", Type: mustType("dict"),
			Strategy: reducer.DeepMerge, Group: GroupDebugging,
			Required: true, Default: map[string]any{},
			Description: "timing and resource usage",
		},
		{
			Name: "debug_flags", Type: mustType("{bool}"),
			Strategy: reducer.LastWriteWins, Group: GroupDebugging,
			Required: true, Default: map[string]any{},
			Description: "detailed logging toggles",
		},
	}
}
