package web

import "embed"

// TemplatesFS embeds the HTML report templates.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet inlined into the report.
//go:embed static/*
var StaticFS embed.FS
