// Package schemas embeds the JSON Schemas for files the CLI persists.
package schemas

import _ "embed"

// Session is the schema for the stored session cookie file.
//
//go:embed session.schema.json
var Session string
