// Package stdlib is the small native library bound into a fresh
// Interpreter at startup: print, type, tostring and tonumber. Output
// goes through an io.Writer rather than directly to os.Stdout, letting
// tests capture it in a buffer.
package stdlib

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lunalang/luna/value"
	"github.com/lunalang/luna/vm"
)

// New returns the native function table bound to w. Register it on a
// fresh interpreter via Interpreter.LoadLibrary(stdlib.New(w)).
func New(w io.Writer) map[string]vm.NativeFunc {
	return map[string]vm.NativeFunc{
		"print":    printFn(w),
		"type":     typeFn,
		"tostring": tostringFn,
		"tonumber": tonumberFn,
	}
}

// printFn joins its arguments' canonical string forms with tab
// separators and writes a trailing newline: `print("hi")` emits
// "hi\t\n".
func printFn(w io.Writer) vm.NativeFunc {
	return func(args []value.Value, _ *vm.Interpreter) (value.Value, error) {
		parts := make([]string, len(args))
		for idx, a := range args {
			parts[idx] = a.String()
		}
		fmt.Fprint(w, strings.Join(parts, "\t"))
		fmt.Fprint(w, "\t\n")
		return value.Nil{}, nil
	}
}

func typeFn(args []value.Value, _ *vm.Interpreter) (value.Value, error) {
	if len(args) == 0 {
		return value.Str(value.KindNil), nil
	}
	return value.Str(args[0].Kind()), nil
}

func tostringFn(args []value.Value, _ *vm.Interpreter) (value.Value, error) {
	if len(args) == 0 {
		return value.Str("nil"), nil
	}
	return value.Str(value.ToStringCoerce(args[0])), nil
}

func tonumberFn(args []value.Value, _ *vm.Interpreter) (value.Value, error) {
	if len(args) == 0 {
		return value.Number(0), nil
	}
	if s, ok := args[0].(value.Str); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64); err != nil {
			return value.Nil{}, nil
		}
	}
	return value.Number(value.ToNum(args[0])), nil
}
