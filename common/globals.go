package common

// PolycVersion is the current polyc version as a string.
const PolycVersion string = "0.1.0"

// IRFileExt is the file extension for a serialized neutral-IR file.
const IRFileExt string = ".ir.json"

// RulesFileName is the default name for a rule-table overlay file.
const RulesFileName string = "polyc-rules.toml"
