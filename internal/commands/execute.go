package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Open    func(OpenArgs) (Result, error)
	Done    func(DoneArgs) (Result, error)
	Fav     func(FavArgs) (Result, error)
	Del     func(DelArgs) (Result, error)
	Refresh func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeOpen:
		if handlers.Open == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "open handler not configured"}
		}
		return handlers.Open(*cmd.Open)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "done handler not configured"}
		}
		return handlers.Done(*cmd.Done)
	case TypeFav:
		if handlers.Fav == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "fav handler not configured"}
		}
		return handlers.Fav(*cmd.Fav)
	case TypeDel:
		if handlers.Del == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "del handler not configured"}
		}
		return handlers.Del(*cmd.Del)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
