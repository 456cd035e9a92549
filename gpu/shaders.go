package gpu

import (
	"fmt"
	"strings"
)

// DefaultWorkgroupSize is the 1-D workgroup size used when no
// recommendation is supplied.
const DefaultWorkgroupSize = 256

// Every kernel reads its parameters from one 32-byte uniform block.
// Unused fields are zero.
const paramsWGSL = `
struct Params {
	count: u32,
	channels: u32,
	offset: u32,
	width: u32,
	amount: u32,
	has_mask: u32,
	pad0: u32,
	pad1: u32,
};
`

// The dispatch may be 2-D when the register outgrows one dimension of
// workgroups; cellIndex folds it back into a flat state index.
const cellIndexWGSL = `
fn cell_index(gid: vec3<u32>, groups: vec3<u32>) -> u32 {
	return gid.x + gid.y * groups.x * WG;
}

fn allowed(i: u32) -> bool {
	return params.has_mask == 0u || mask[i] != 0.0;
}
`

const complexWGSL = `
fn amp(i: u32) -> vec2<f32> {
	let b = i * params.channels;
	return vec2<f32>(src[b], src[b + 1u]);
}

fn coeff(idx: u32) -> vec2<f32> {
	return vec2<f32>(coeffs[2u * idx], coeffs[2u * idx + 1u]);
}

fn cmul(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> {
	return vec2<f32>(a.x * b.x - a.y * b.y, a.x * b.y + a.y * b.x);
}

fn copy_cell(i: u32) {
	let b = i * params.channels;
	for (var c: u32 = 0u; c < params.channels; c++) {
		dst[b + c] = src[b + c];
	}
}
`

// UnitaryShader returns the WGSL kernel applying a 2^k x 2^k matrix. With
// dynamic set, the coefficient row is indexed directly by the field value;
// otherwise the kernel switches over every row with constant indices. The
// k == 1 kernel is the pairwise fast path for both settings.
func UnitaryShader(k int, dynamic bool) string {
	return unitaryShader(k, dynamic, DefaultWorkgroupSize)
}

func unitaryShader(k int, dynamic bool, wg int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "const WG: u32 = %du;\nconst DIM: u32 = %du;\n", wg, 1<<k)
	sb.WriteString(paramsWGSL)
	sb.WriteString(`
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<f32>;
@group(0) @binding(2) var<storage, read> mask: array<f32>;
@group(0) @binding(3) var<storage, read> coeffs: array<f32>;
@group(0) @binding(4) var<storage, read_write> dst: array<f32>;
`)
	sb.WriteString(cellIndexWGSL)
	sb.WriteString(complexWGSL)
	fmt.Fprintf(&sb, `
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) groups: vec3<u32>) {
	let i = cell_index(gid, groups);
	if (i >= params.count) {
		return;
	}
	if (!allowed(i)) {
		copy_cell(i);
		return;
	}
`, wg)

	switch {
	case k == 1:
		sb.WriteString(`
	let bit = 1u << params.offset;
	var c1 = coeff(0u);
	var c2 = coeff(1u);
	if ((i & bit) != 0u) {
		c1 = coeff(3u);
		c2 = coeff(2u);
	}
	let acc = cmul(c1, amp(i)) + cmul(c2, amp(i ^ bit));
`)
	case dynamic:
		sb.WriteString(`
	let field = (DIM - 1u) << params.offset;
	let row = (i & field) >> params.offset;
	let base = i & ~field;
	var acc = vec2<f32>(0.0, 0.0);
	for (var c: u32 = 0u; c < DIM; c++) {
		acc += cmul(coeff(row * DIM + c), amp(base | (c << params.offset)));
	}
`)
	default:
		sb.WriteString(`
	let field = (DIM - 1u) << params.offset;
	let row = (i & field) >> params.offset;
	let base = i & ~field;
	var acc = vec2<f32>(0.0, 0.0);
	switch row {
`)
		dim := 1 << k
		for r := 0; r < dim; r++ {
			fmt.Fprintf(&sb, "\t\tcase %du: {\n", r)
			for c := 0; c < dim; c++ {
				fmt.Fprintf(&sb, "\t\t\tacc += cmul(coeff(%du), amp(base | (%du << params.offset)));\n", r*dim+c, c)
			}
			sb.WriteString("\t\t}\n")
		}
		sb.WriteString("\t\tdefault: {}\n\t}\n")
	}

	sb.WriteString(`
	let b = i * params.channels;
	dst[b] = acc.x;
	dst[b + 1u] = acc.y;
}
`)
	return sb.String()
}

// CycleAllShader returns the WGSL kernel rotating every state index left
// by params.amount bits within a params.width-bit register.
func CycleAllShader() string {
	return cycleAllShader(DefaultWorkgroupSize)
}

func cycleAllShader(wg int) string {
	return fmt.Sprintf(`const WG: u32 = %du;
%s
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<f32>;
@group(0) @binding(2) var<storage, read_write> dst: array<f32>;

fn cell_index(gid: vec3<u32>, groups: vec3<u32>) -> u32 {
	return gid.x + gid.y * groups.x * WG;
}

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) groups: vec3<u32>) {
	let i = cell_index(gid, groups);
	if (i >= params.count) {
		return;
	}
	let k = params.amount;
	let idx = ((i << k) | (i >> (params.width - k))) & (params.count - 1u);
	let s = idx * params.channels;
	let d = i * params.channels;
	for (var c: u32 = 0u; c < params.channels; c++) {
		dst[d + c] = src[s + c];
	}
}
`, wg, paramsWGSL, wg)
}

// IncrementShader returns the WGSL kernel subtracting params.amount from
// the params.width-bit field at params.offset of every allowed state index
// to find its source cell.
func IncrementShader() string {
	return incrementShader(DefaultWorkgroupSize)
}

func incrementShader(wg int) string {
	return fmt.Sprintf(`const WG: u32 = %du;
%s
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<f32>;
@group(0) @binding(2) var<storage, read> mask: array<f32>;
@group(0) @binding(3) var<storage, read_write> dst: array<f32>;
%s
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) groups: vec3<u32>) {
	let i = cell_index(gid, groups);
	if (i >= params.count) {
		return;
	}
	var idx = i;
	if (allowed(i)) {
		let fmask = (1u << params.width) - 1u;
		let field = (i >> params.offset) & fmask;
		idx = (i & ~(fmask << params.offset)) | (((field - params.amount) & fmask) << params.offset);
	}
	let s = idx * params.channels;
	let d = i * params.channels;
	for (var c: u32 = 0u; c < params.channels; c++) {
		dst[d + c] = src[s + c];
	}
}
`, wg, paramsWGSL, cellIndexWGSL, wg)
}
