/*
Package swarmstate is a merge algebra and schema-migration engine for shared
multi-agent workflow state.

Multiple agents update one state object concurrently. Instead of last write
wins across the board, every field is bound to a merge strategy (a reducer):
progress only moves forward, histories append with bounded depth, permission
sets intersect, memories deep-merge. A versioned migration pipeline carries
old snapshots to the current schema, with backups taken before any rewrite.

# Key Features

  - Field registry: every field declares its type, reducer, retention policy
    and validation rules, loadable from a YAML document.
  - Partial-failure isolation: a malformed field is skipped and logged, never
    poisoning the rest of a merge.
  - Versioned migrations: explicit single-hop steps, strict validation after
    every hop, backup before auto-migration.
  - Pluggable checkpoints: in-memory, filesystem and Redis stores behind one
    port, plus an HTTP surface.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/swarmstate"
	)

	func main() {
		eng, err := swarmstate.New()
		if err != nil {
			log.Fatal(err)
		}

		st := eng.NewState()
		st = eng.MergeStates(st, map[string]any{
			"task_progress": map[string]any{"build": 40},
		})
		st = eng.MergeStates(st, map[string]any{
			"task_progress": map[string]any{"build": 25}, // ignored: lower
		})

		fmt.Println(st["task_progress"]) // build stays at 40
	}
*/
package swarmstate
