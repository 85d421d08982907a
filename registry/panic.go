package registry

import (
	"fmt"
	"runtime/debug"
)

func panicMessage(p interface{}) string {
	if err, ok := p.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p)
}

func panicStack() string {
	return string(debug.Stack())
}

func errTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}
