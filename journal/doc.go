// Package journal appends every applied command, and the InverseOp
// derived from applying it, to an in-memory log and (optionally) a
// segmented on-disk WAL. Rewinding past a poison command is done by
// walking the log backwards and applying inverse ops; see Journal.Rewind.
package journal
