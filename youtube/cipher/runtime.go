package cipher

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/robertkrimen/otto"

	"github.com/ytget/ytinfo/internal/logger"
)

const entryName = "ytinfoTransform"

// jsTimeout bounds one evaluation of extracted player code.
var jsTimeout = 2 * time.Second

var errHalt = errors.New("script evaluation timed out")

// evalJS runs fn(arg) defined by src in goja, then in otto when goja fails.
func evalJS(src, arg string) (string, error) {
	out, err := evalGoja(src, arg)
	if err == nil {
		return out, nil
	}
	if IsTimeout(err) {
		return "", err
	}
	logger.WithComponent(logger.ComponentCipher).Debug("goja evaluation failed, trying otto", map[string]interface{}{
		"error": err.Error(),
	})
	out, ottoErr := evalOtto(src, arg)
	if ottoErr != nil {
		return "", ottoErr
	}
	return out, nil
}

func evalGoja(src, arg string) (string, error) {
	vm := goja.New()
	timer := time.AfterFunc(jsTimeout, func() { vm.Interrupt(errHalt) })
	defer timer.Stop()

	if _, err := vm.RunString("var " + entryName + "=" + src + ";"); err != nil {
		return "", gojaError(err)
	}
	fn, ok := goja.AssertFunction(vm.Get(entryName))
	if !ok {
		return "", NewError(ErrCodeJSExecutionFailed, "transform is not a function")
	}
	v, err := fn(goja.Undefined(), vm.ToValue(arg))
	if err != nil {
		return "", gojaError(err)
	}
	return v.String(), nil
}

func gojaError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return wrapError(ErrCodeSignatureTimeout, "goja interrupted", err)
	}
	return wrapError(ErrCodeJSExecutionFailed, "goja", err)
}

func evalOtto(src, arg string) (out string, err error) {
	vm := otto.New()
	vm.Interrupt = make(chan func(), 1)
	timer := time.AfterFunc(jsTimeout, func() {
		vm.Interrupt <- func() { panic(errHalt) }
	})
	defer timer.Stop()
	defer func() {
		if r := recover(); r != nil {
			if r == errHalt {
				err = wrapError(ErrCodeSignatureTimeout, "otto interrupted", errHalt)
				return
			}
			err = NewError(ErrCodeJSExecutionFailed, "otto panic", fmt.Sprint(r))
		}
	}()

	if _, err := vm.Run("var " + entryName + "=" + src + ";"); err != nil {
		return "", wrapError(ErrCodeJSExecutionFailed, "otto", err)
	}
	v, err := vm.Call(entryName, nil, arg)
	if err != nil {
		return "", wrapError(ErrCodeJSExecutionFailed, "otto", err)
	}
	s, err := v.ToString()
	if err != nil {
		return "", wrapError(ErrCodeJSExecutionFailed, "otto result", err)
	}
	return s, nil
}
