package pods

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openfluke/qgrid/grid"
	"github.com/openfluke/qgrid/matrix"
)

// ErrWire is returned for a JSON request that cannot be decoded.
var ErrWire = errors.New("qgrid/pods: malformed request")

// WireRequest is the JSON form of a Request used by the C and JavaScript
// bridges. Matrix holds row-major (re, im) pairs; an empty Mask allows
// every state; Channels defaults to 2.
type WireRequest struct {
	Op       Opcode    `json:"op"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Channels int       `json:"channels,omitempty"`
	Data     []float32 `json:"data"`
	Mask     []float32 `json:"mask,omitempty"`
	Matrix   []float32 `json:"matrix,omitempty"`
	Target   int       `json:"target,omitempty"`
	Shift    int       `json:"shift,omitempty"`
	Index    int       `json:"index,omitempty"`
	Span     int       `json:"span,omitempty"`
	Amount   int       `json:"amount,omitempty"`
}

// WireResponse carries either the output grid or an error message.
type WireResponse struct {
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Channels int       `json:"channels,omitempty"`
	Data     []float32 `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Request converts w, copying its buffers.
func (w WireRequest) Request() (Request, error) {
	ch := w.Channels
	if ch == 0 {
		ch = grid.AmplitudeChannels
	}
	in, err := grid.FromData(w.Width, w.Height, ch, append([]float32(nil), w.Data...))
	if err != nil {
		return Request{}, err
	}
	req := Request{
		Op:     w.Op,
		Input:  in,
		Target: w.Target,
		Shift:  w.Shift,
		Index:  w.Index,
		Span:   w.Span,
		Amount: w.Amount,
	}
	if len(w.Mask) > 0 {
		req.Mask = &grid.Mask{Width: w.Width, Height: w.Height, Data: append([]float32(nil), w.Mask...)}
		if err := req.Mask.Validate(); err != nil {
			return Request{}, err
		}
	}
	if len(w.Matrix) > 0 {
		if len(w.Matrix)%2 != 0 {
			return Request{}, fmt.Errorf("%w: matrix has %d floats, want (re, im) pairs", ErrWire, len(w.Matrix))
		}
		values := make([]complex128, len(w.Matrix)/2)
		for i := range values {
			values[i] = complex(float64(w.Matrix[2*i]), float64(w.Matrix[2*i+1]))
		}
		if req.Matrix, err = matrix.Square(values...); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

// HandleJSON decodes a WireRequest, dispatches it and encodes the
// WireResponse. Failures are reported in the response's error field.
func HandleJSON(ec *ExecContext, body []byte) []byte {
	resp := handle(ec, body)
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(WireResponse{Error: err.Error()})
	}
	return out
}

func handle(ec *ExecContext, body []byte) WireResponse {
	var w WireRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return WireResponse{Error: fmt.Errorf("%w: %v", ErrWire, err).Error()}
	}
	req, err := w.Request()
	if err != nil {
		return WireResponse{Error: err.Error()}
	}
	out, err := Dispatch(ec, req)
	if err != nil {
		return WireResponse{Error: err.Error()}
	}
	return WireResponse{Width: out.Width, Height: out.Height, Channels: out.Channels, Data: out.Data}
}
