package format

// Key enumerates the well-known field names of a structured log document
type Key int

// Well-known keys; the set is fixed and unknown keys are a programming error
const (
	KeyRecord Key = iota
	KeyTimestamp
	KeySequence
	KeyLoggerName
	KeyLevel
	KeyMessage
	KeySourceClassName
	KeySourceFileName
	KeySourceMethodName
	KeySourceLineNumber
	KeyFields
	KeyException
	KeyExceptionMessage
	KeyExceptionFrame
	KeyExceptionFrameClass
	KeyExceptionFrameMethod
	KeyExceptionFrameLine

	numKeys
)

var defaultKeyNames = [numKeys]string{
	KeyRecord:               "record",
	KeyTimestamp:            "timestamp",
	KeySequence:             "sequence",
	KeyLoggerName:           "loggerName",
	KeyLevel:                "level",
	KeyMessage:              "message",
	KeySourceClassName:      "sourceClassName",
	KeySourceFileName:       "sourceFileName",
	KeySourceMethodName:     "sourceMethodName",
	KeySourceLineNumber:     "sourceLineNumber",
	KeyFields:               "fields",
	KeyException:            "exception",
	KeyExceptionMessage:     "message",
	KeyExceptionFrame:       "frame",
	KeyExceptionFrameClass:  "class",
	KeyExceptionFrameMethod: "method",
	KeyExceptionFrameLine:   "line",
}

// Name returns the default wire name of the key
func (k Key) Name() string {
	return defaultKeyNames[k]
}

// KeyByName finds a well-known key by its default wire name, for configuration
// files which address keys by name
//
// KeyExceptionMessage shares the default name "message" with KeyMessage and can
// only be overridden programmatically
func KeyByName(name string) (Key, bool) {
	for k, n := range defaultKeyNames {
		if n == name {
			return Key(k), true
		}
	}
	return 0, false
}

// KeyTable resolves well-known keys to their wire names, applying per-instance
// overrides; read-only after construction
type KeyTable struct {
	overrides map[Key]string
}

// NewKeyTable creates a KeyTable with the given overrides, which may be nil
func NewKeyTable(overrides map[Key]string) *KeyTable {
	copied := make(map[Key]string, len(overrides))
	for key, name := range overrides {
		copied[key] = name
	}
	return &KeyTable{overrides: copied}
}

// Resolve returns the override for the key if present, else its default wire name
func (t *KeyTable) Resolve(key Key) string {
	if name, exists := t.overrides[key]; exists {
		return name
	}
	return defaultKeyNames[key]
}
