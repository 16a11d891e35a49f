package permission

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CommandNames parses shell command text and returns the name of every
// simple command it invokes, in source order. Compound constructs such as
// pipes, lists and subshells are descended into. Returns nil when the text
// does not parse as shell.
func CommandNames(command string) []string {
	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil
	}

	var names []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		var sb strings.Builder
		printer := syntax.NewPrinter()
		if err := printer.Print(&sb, call.Args[0]); err == nil {
			names = append(names, sb.String())
		}
		return true
	})
	return names
}

// Title renders a one-line human summary of a request, used in prompts and
// permission events.
func Title(req Request) string {
	switch req.Operation {
	case OpCreateFile:
		return fmt.Sprintf("Create file %s", detailString(req, "path"))
	case OpEditFile:
		return fmt.Sprintf("Edit file %s", detailString(req, "path"))
	case OpDeleteFile:
		return fmt.Sprintf("Delete file %s", detailString(req, "path"))
	case OpRunCommand:
		cmd := strings.TrimSpace(req.Command())
		if names := CommandNames(cmd); len(names) > 0 {
			return fmt.Sprintf("Run %s", strings.Join(names, ", "))
		}
		return fmt.Sprintf("Run command %q", cmd)
	default:
		return string(req.Operation)
	}
}

func detailString(req Request, key string) string {
	if v, ok := req.Details[key].(string); ok {
		return v
	}
	return "?"
}
