// Package common holds small helpers shared by the mapping, schema and plan packages.
package common

// UnknownStr is the String() value of enum members without a name.
const UnknownStr = "unknown"
