// Package appfs embeds the static assets shipped with the binaries.
package appfs

import "embed"

//go:embed templates/email/*
var FS embed.FS

// EmailTemplatesDir is the FS directory holding email templates.
const EmailTemplatesDir = "templates/email"
