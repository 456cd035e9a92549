// Command cabi builds qgrid as a C shared library:
//
//	go build -buildmode=c-shared -o libqgrid.so ./cabi
//
// Requests and responses are JSON strings; free every returned string with
// QgridFreeString.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/openfluke/qgrid/circuit"
	"github.com/openfluke/qgrid/config"
	"github.com/openfluke/qgrid/gpu"
	"github.com/openfluke/qgrid/pods"
)

var (
	once sync.Once
	exec *pods.ExecContext
)

// execContext builds the shared context from QGRID_* environment settings.
func execContext() *pods.ExecContext {
	once.Do(func() {
		exec = pods.NewContext(context.Background())
		cfg, err := config.Load("")
		if err != nil || cfg.Backend == config.BackendCPU {
			return
		}
		backend, err := pods.OpenGPU(gpu.Options{
			DynamicIndexing: cfg.GPU.DynamicIndexing,
			WorkgroupSize:   cfg.GPU.WorkgroupSize,
			BudgetBytes:     cfg.BudgetBytes(),
			ReadbackTimeout: cfg.GPU.ReadbackTimeout,
		})
		if err == nil {
			exec.WithGPU(backend)
		}
	})
	return exec
}

func asJSON(v any) *C.char {
	data, err := json.Marshal(v)
	if err != nil {
		return C.CString(`{"error": "encode response"}`)
	}
	return C.CString(string(data))
}

//export QgridDispatch
func QgridDispatch(request *C.char) *C.char {
	out := pods.HandleJSON(execContext(), []byte(C.GoString(request)))
	return C.CString(string(out))
}

//export QgridRunProgram
func QgridRunProgram(program *C.char) *C.char {
	p, err := circuit.ParseProgram([]byte(C.GoString(program)))
	if err != nil {
		return asJSON(map[string]string{"error": err.Error()})
	}
	out, err := p.Run(context.Background(), execContext())
	resp := map[string]any{}
	if out != nil {
		resp["probabilities"] = out.Probabilities()
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return asJSON(resp)
}

//export QgridFreeString
func QgridFreeString(str *C.char) {
	C.free(unsafe.Pointer(str))
}

func main() {}
