package types

// Version is the canonical sigsplit version.
// Run reports and adapter events carry it.
const Version = "0.3.0"
