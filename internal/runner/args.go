package runner

import "fmt"

// SplitCommand tokenizes a command line into an argument list
// without invoking a shell. Single and double quotes group words;
// backslash escapes the next character outside single quotes. The
// resulting argv is handed to the process launcher as-is, so shell
// metacharacters in arguments are never re-interpreted.
func SplitCommand(command string) ([]string, error) {
	var (
		args    []string
		current []rune
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range command {
		switch {
		case escaped:
			current = append(current, r)
			escaped = false
		case quote == '\'' && r != '\'':
			current = append(current, r)
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			switch quote {
			case 0:
				quote = r
				inWord = true
			case r:
				quote = 0
			default:
				current = append(current, r)
			}
		case (r == ' ' || r == '\t' || r == '\n') && quote == 0:
			if inWord {
				args = append(args, string(current))
				current = current[:0]
				inWord = false
			}
		default:
			current = append(current, r)
			inWord = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("command ends with an unfinished escape: %q", command)
	}
	if quote != 0 {
		return nil, fmt.Errorf("command has an unclosed %c quote: %q", quote, command)
	}
	if inWord {
		args = append(args, string(current))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command is empty after tokenization: %q", command)
	}
	return args, nil
}
