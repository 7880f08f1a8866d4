// Package journalpb holds the protobuf-generated wire type for one
// journal frame. It is generated from frame.proto; do not hand-edit
// frame.pb.go.
package journalpb
