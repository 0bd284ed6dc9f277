package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeOpen    Type = "open"
	TypeDone    Type = "done"
	TypeFav     Type = "fav"
	TypeDel     Type = "del"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type OpenArgs struct {
	List string
}

// TargetSelected means the command applies to the highlighted task.
const TargetSelected = "selected"

type DoneArgs struct {
	Target string
}

type FavArgs struct {
	Target string
}

type DelArgs struct {
	Target string
}

type Command struct {
	Type Type
	Raw  string
	Add  *AddArgs
	Open *OpenArgs
	Done *DoneArgs
	Fav  *FavArgs
	Del  *DelArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeOpen:
		return parseOpen(input, args)
	case TypeDone:
		return Command{Type: TypeDone, Raw: input, Done: &DoneArgs{Target: targetOf(args)}}, nil
	case TypeFav:
		return Command{Type: TypeFav, Raw: input, Fav: &FavArgs{Target: targetOf(args)}}, nil
	case TypeDel:
		return Command{Type: TypeDel, Raw: input, Del: &DelArgs{Target: targetOf(args)}}, nil
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseOpen(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a list name"}
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a list name"}
	}
	return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{List: name}}, nil
}

// targetOf lets done/fav/del name a task ID or fall back to the selection.
func targetOf(args []string) string {
	if len(args) == 0 {
		return TargetSelected
	}
	return strings.TrimSpace(strings.Join(args, " "))
}
