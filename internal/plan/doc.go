// Package plan stores, persists, and validates day-keyed planner tasks.
//
// The data file (planner.json) maps YYYY-MM-DD date keys to task lists:
//
//	{
//	  "2024-03-15": [
//	    {
//	      "id": 1710480600,
//	      "description": "Buy milk",
//	      "time": "14:30",
//	      "completed": false
//	    },
//	    {
//	      "id": 1710480601,
//	      "description": "Call mom",
//	      "time": "",
//	      "completed": true
//	    }
//	  ]
//	}
//
// # Loading
//
// Load tolerates damaged files so the planner can always start. A missing
// file means an empty planner. A file that cannot be
// parsed, or a record without a description, discards the whole file and
// leaves the planner empty; the caller gets an advisory error to warn with.
// Records missing a time get "", missing completed gets false, and a
// missing id is reassigned from the store's counter.
//
// # Validation
//
// ValidateData checks raw file contents against the bundled JSON Schema
// (draft 2020-12). It is used by health checks, not by Load: the schema
// describes a fully healthy file and rejects states the loader repairs.
//
// # File Format
//
// When writing the data file, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Date keys in sorted (chronological) order
package plan
