package pods

import "github.com/openfluke/qgrid/grid"

type unitaryPod struct{}

func (unitaryPod) Name() Opcode { return OpUnitary }

func (unitaryPod) Run(ec *ExecContext, req Request) (*grid.Grid, error) {
	return ec.Backend().ApplyUnitary(ec.Ctx, req.Input, req.Matrix, req.Target, req.Mask)
}

type cycleAllPod struct{}

func (cycleAllPod) Name() Opcode { return OpCycleAll }

func (cycleAllPod) Run(ec *ExecContext, req Request) (*grid.Grid, error) {
	return ec.Backend().CycleAllBits(ec.Ctx, req.Input, req.Shift)
}

type incrementPod struct{}

func (incrementPod) Name() Opcode { return OpIncrement }

func (incrementPod) Run(ec *ExecContext, req Request) (*grid.Grid, error) {
	return ec.Backend().Increment(ec.Ctx, req.Input, req.Mask, req.Index, req.Span, req.Amount)
}
