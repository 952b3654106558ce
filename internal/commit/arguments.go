package commit

import (
	"errors"
)

const (
	messageFlagShortConstant        = "-m"
	messageFlagCombinedConstant     = "-am"
	messageFlagLongConstant         = "--message"
	missingMessageMessageConstant   = "commit message is required (-m <message> or -am <message>)"
	missingArgumentsMessageConstant = "no commit arguments provided"
)

// ErrMessageMissing indicates no commit message flag was supplied or the flag
// had no value.
var ErrMessageMissing = errors.New(missingMessageMessageConstant)

// ErrNoArguments indicates the commit invocation received no arguments at all.
var ErrNoArguments = errors.New(missingArgumentsMessageConstant)

// Arguments is the decoded form of the raw commit argument list. The message
// is intercepted for policy checks; everything else is forwarded verbatim to
// the underlying commit invocation.
type Arguments struct {
	MessageFlag string
	Message     string
	Forwarded   []string
}

// ParseArguments extracts the commit message introduced by -m, -am, or
// --message and collects the remaining arguments in their original order.
func ParseArguments(rawArguments []string) (Arguments, error) {
	if len(rawArguments) == 0 {
		return Arguments{}, ErrNoArguments
	}

	parsedArguments := Arguments{}
	messageFound := false

	for argumentIndex := 0; argumentIndex < len(rawArguments); argumentIndex++ {
		currentArgument := rawArguments[argumentIndex]

		if !messageFound && isMessageFlag(currentArgument) {
			if argumentIndex+1 >= len(rawArguments) {
				return Arguments{}, ErrMessageMissing
			}
			parsedArguments.MessageFlag = currentArgument
			parsedArguments.Message = rawArguments[argumentIndex+1]
			messageFound = true
			argumentIndex++
			continue
		}

		parsedArguments.Forwarded = append(parsedArguments.Forwarded, currentArgument)
	}

	if !messageFound {
		return Arguments{}, ErrMessageMissing
	}

	return parsedArguments, nil
}

func isMessageFlag(argument string) bool {
	switch argument {
	case messageFlagShortConstant, messageFlagCombinedConstant, messageFlagLongConstant:
		return true
	default:
		return false
	}
}
