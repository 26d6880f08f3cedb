package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelPart      = "part"

	LabelRemote = "remote"
)
