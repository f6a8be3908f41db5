// Package models provides shared data structures for the HelixGate project.
//
// This package contains all core data models used across the authority server,
// the client SDK, and the node agent. By keeping models in a separate package,
// they can be imported and reused by any component without creating circular
// dependencies.
//
// The models in this package represent:
//   - NodeRecord: authority-held state for one registered node
//   - NodeStatus: the per-node state machine (active / blocked)
//   - API request and response payloads for registration and verification
//
// All structs include JSON tags for API serialization and documentation
// comments explaining the purpose and constraints of each field.
package models
