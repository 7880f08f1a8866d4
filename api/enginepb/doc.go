// Package enginepb holds the wire types for the engine's external
// gRPC surface (spec §6's Command/Event envelopes). Like journalpb,
// these are hand-written against the legacy Message interface
// (Reset/String/ProtoMessage) rather than produced by protoc-gen-go;
// see engine.proto for the schema they correspond to.
package enginepb
