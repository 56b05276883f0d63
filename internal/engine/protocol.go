package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dtarnawsky/dust/internal/model"
)

// Dispatch executes a raw method-name request as it arrives over the message
// boundary: a method string plus positional arguments (numbers decode as
// float64, dates as RFC 3339 or plain "2006-01-02" strings). An unknown
// method is logged and yields a nil result with no error; it never crashes
// the worker.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, args []any) (*Result, error) {
	cmd, ok := d.parse(method, args)
	if !ok {
		d.log.Warn().Str("method", method).Msg("unknown method")
		return nil, nil
	}
	res, err := d.Do(ctx, cmd)
	if errors.Is(err, model.ErrNotFound) {
		// Absence is a normal outcome on this boundary: no result, no failure.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *Dispatcher) parse(method string, args []any) (Command, bool) {
	cmd := Command{Op: Op(method)}
	switch cmd.Op {
	case OpPopulate, OpGetDays:
		return cmd, true
	case OpGetEvents, OpGetCamps:
		cmd.Offset = intArg(args, 0)
		cmd.Count = intArg(args, 1)
		return cmd, true
	case OpFindEvent, OpFindCamp, OpFindArt:
		cmd.UID = stringArg(args, 0)
		return cmd, true
	case OpFindCamps, OpFindArts:
		cmd.Query = stringArg(args, 0)
		return cmd, true
	case OpFindEvents:
		cmd.Query = stringArg(args, 0)
		cmd.Day = dayArg(args, 1)
		return cmd, true
	default:
		return Command{}, false
	}
}

func intArg(args []any, i int) int {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}

func dayArg(args []any, i int) *time.Time {
	if i >= len(args) || args[i] == nil {
		return nil
	}
	s, ok := args[i].(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
