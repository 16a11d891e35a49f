package permission

import "strings"

// Decide evaluates a request against the configured options without any
// side effects or user interaction. Protection rules are checked before the
// yolo gate, and denylist matches win over allowlist matches.
func Decide(req Request, opts Options) Verdict {
	if req.Operation == OpDeleteFile && opts.DeleteFileProtection {
		return Ask
	}

	if !opts.YoloMode {
		return Ask
	}

	if req.Operation == OpRunCommand {
		cmd := strings.TrimSpace(req.Command())

		if matchAnyPrefix(cmd, opts.CommandDenylist) {
			return AutoDeny
		}

		if len(opts.CommandAllowlist) > 0 {
			if matchAnyPrefix(cmd, opts.CommandAllowlist) {
				return AutoGrant
			}
			return Ask
		}
	}

	return AutoGrant
}

func matchAnyPrefix(cmd string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(cmd, p) {
			return true
		}
	}
	return false
}
