//go:build js && wasm

// Command wasm exposes the CPU executor to JavaScript:
//
//	GOOS=js GOARCH=wasm go build -o qgrid.wasm ./wasm
//
// Every function takes and returns a JSON string.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/openfluke/qgrid/circuit"
	"github.com/openfluke/qgrid/pods"
)

var exec = pods.NewContext(context.Background())

func errJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}

// dispatch wraps pods.HandleJSON: QgridDispatch(requestJSON).
func dispatch() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return errJSON(fmt.Errorf("%w: request required", pods.ErrWire))
		}
		return string(pods.HandleJSON(exec, []byte(args[0].String())))
	})
}

// runProgram evaluates a YAML program: QgridRunProgram(programYAML).
func runProgram() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return errJSON(fmt.Errorf("%w: program required", circuit.ErrProgram))
		}
		p, err := circuit.ParseProgram([]byte(args[0].String()))
		if err != nil {
			return errJSON(err)
		}
		out, err := p.Run(context.Background(), exec)
		resp := map[string]any{}
		if out != nil {
			resp["probabilities"] = out.Probabilities()
		}
		if err != nil {
			resp["error"] = err.Error()
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return errJSON(err)
		}
		return string(data)
	})
}

func listOps() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		data, _ := json.Marshal(pods.Names())
		return string(data)
	})
}

func main() {
	js.Global().Set("QgridDispatch", dispatch())
	js.Global().Set("QgridRunProgram", runProgram())
	js.Global().Set("QgridListOps", listOps())
	js.Global().Get("console").Call("log", "qgrid wasm ready")
	select {}
}
